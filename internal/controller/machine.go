// Package controller drives each listing feature through a single
// Idle -> Pending -> Idle cycle per request and remembers the outcome so the
// user can accept it into the listing draft.
package controller

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"listingai/internal/domain"
	"listingai/internal/providers/genai"
	"listingai/internal/providers/prompt"
)

// Feature names a controller.
type Feature string

const (
	FeatureDescription Feature = "description"
	FeatureImage       Feature = "image"
	FeatureImageToText Feature = "image-to-text"
	FeatureImageEdit   Feature = "image-edit"
	FeaturePhotos      Feature = "product-photos"
)

// State is the controller's position in its request cycle.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

var (
	// ErrBusy is returned when a trigger arrives while a request is in flight.
	ErrBusy = errors.New("a generation is already in progress")
	// ErrNothingToAccept is returned by Accept without a successful result.
	ErrNothingToAccept = errors.New("no result to accept")
	// ErrNoSelection is returned by Accept when several images came back and
	// none has been chosen.
	ErrNoSelection = errors.New("choose one of the generated images first")
	// ErrInvalidSelection is returned when a chosen index is out of range.
	ErrInvalidSelection = errors.New("no generated image at that position")

	errPanicked = errors.New("generation aborted unexpectedly")
)

// ClientSource yields the current generative client. The session swaps it
// whenever the credential changes.
type ClientSource interface {
	Client() *genai.Client
}

// AssetStore persists accepted images.
type AssetStore interface {
	SaveImage(ctx context.Context, mime string, width, height int, data []byte, source domain.AssetSource) (domain.Asset, error)
}

// View is the renderable state of a controller.
type View struct {
	Feature              Feature            `json:"feature"`
	State                State              `json:"state"`
	Text                 string             `json:"text,omitempty"`
	ImageData            string             `json:"image_data,omitempty"`
	MIMEType             string             `json:"mime_type,omitempty"`
	Placeholder          bool               `json:"placeholder,omitempty"`
	Attributes           *prompt.Attributes `json:"attributes,omitempty"`
	Images               []ViewImage        `json:"images,omitempty"`
	Selected             *int               `json:"selected,omitempty"`
	Error                string             `json:"error,omitempty"`
	ErrorKind            genai.Kind         `json:"error_kind,omitempty"`
	TimedOut             bool               `json:"timed_out,omitempty"`
	ShowUseResult        bool               `json:"show_use_result"`
	ShowCredentialPrompt bool               `json:"show_credential_prompt"`
}

// ViewImage is one entry of a multi-image result.
type ViewImage struct {
	ImageData   string `json:"image_data"`
	MIMEType    string `json:"mime_type"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

type galleryImage struct {
	data        []byte
	mime        string
	placeholder bool
}

type outcome struct {
	text        string
	image       []byte
	mime        string
	placeholder bool
	attributes  *prompt.Attributes
	acceptable  bool
	source      domain.AssetSource
	// gallery holds multi-image results; selected indexes it, -1 for none.
	gallery  []galleryImage
	selected int
}

// machine is the Idle/Pending state shared by every feature controller.
type machine struct {
	feature Feature

	mu      sync.Mutex
	state   State
	outcome *outcome
	err     error
}

func newMachine(f Feature) *machine {
	return &machine{feature: f, state: StateIdle}
}

// run executes fn unless a request is already pending. fn may return a
// partial outcome alongside an error, e.g. the text of a reply that lacked
// the expected image.
func (m *machine) run(ctx context.Context, fn func(context.Context) (*outcome, error)) (View, error) {
	m.mu.Lock()
	if m.state == StatePending {
		v := m.viewLocked()
		m.mu.Unlock()
		return v, ErrBusy
	}
	m.state = StatePending
	m.mu.Unlock()

	var (
		out      *outcome
		err      error
		finished bool
	)
	defer func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.state = StateIdle
		if !finished {
			m.outcome = nil
			m.err = errPanicked
		}
	}()

	out, err = fn(ctx)
	finished = true

	m.mu.Lock()
	m.outcome = out
	m.err = err
	if err != nil && out != nil {
		out.acceptable = false
	}
	m.state = StateIdle
	v := m.viewLocked()
	m.mu.Unlock()
	return v, nil
}

// fail records a validation error without a network call.
func (m *machine) fail(err error) (View, error) {
	return m.run(context.Background(), func(context.Context) (*outcome, error) {
		return nil, err
	})
}

func (m *machine) view() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *machine) accepted() (outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StatePending {
		return outcome{}, ErrBusy
	}
	if m.outcome == nil || !m.outcome.acceptable {
		return outcome{}, ErrNothingToAccept
	}
	return *m.outcome, nil
}

// choose marks the gallery image Accept will use.
func (m *machine) choose(index int) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StatePending {
		return m.viewLocked(), ErrBusy
	}
	o := m.outcome
	if o == nil || !o.acceptable || len(o.gallery) == 0 {
		return m.viewLocked(), ErrNothingToAccept
	}
	if index < 0 || index >= len(o.gallery) {
		return m.viewLocked(), ErrInvalidSelection
	}
	o.selected = index
	return m.viewLocked(), nil
}

func (m *machine) viewLocked() View {
	v := View{Feature: m.feature, State: m.state}
	if o := m.outcome; o != nil {
		v.Text = o.text
		if len(o.image) > 0 {
			v.ImageData = base64.StdEncoding.EncodeToString(o.image)
			v.MIMEType = o.mime
		}
		v.Placeholder = o.placeholder
		v.Attributes = o.attributes
		v.ShowUseResult = o.acceptable && m.err == nil
		if len(o.gallery) > 0 {
			v.Images = make([]ViewImage, len(o.gallery))
			for i, img := range o.gallery {
				v.Images[i] = ViewImage{
					ImageData:   base64.StdEncoding.EncodeToString(img.data),
					MIMEType:    img.mime,
					Placeholder: img.placeholder,
				}
			}
			if o.selected >= 0 && o.selected < len(o.gallery) {
				sel := o.selected
				v.Selected = &sel
			} else {
				v.ShowUseResult = false
			}
		}
	}
	if m.err != nil {
		v.Error = m.err.Error()
		v.ErrorKind = genai.KindOf(m.err)
		if v.ErrorKind == "" {
			v.ErrorKind = genai.KindTransport
		}
		v.ShowCredentialPrompt = genai.IsCredentialError(m.err)
		v.TimedOut = errors.Is(m.err, context.DeadlineExceeded)
	}
	return v
}

func invalidInput(msg string) error {
	return &genai.Error{Kind: genai.KindInvalidInput, Message: msg}
}

func missingCredential() error {
	return &genai.Error{Kind: genai.KindMissingCredential, Message: "set a Gemini API key before generating"}
}

// ready returns the current client or the error explaining why none is usable.
func ready(src ClientSource) (*genai.Client, error) {
	if src == nil {
		return nil, missingCredential()
	}
	c := src.Client()
	if c == nil || !c.HasCredential() {
		return nil, missingCredential()
	}
	return c, nil
}
