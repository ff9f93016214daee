package controller

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listingai/internal/domain"
	"listingai/internal/events"
	"listingai/internal/providers/genai"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type staticClients struct {
	client *genai.Client
}

func (s staticClients) Client() *genai.Client { return s.client }

type memoryAssets struct {
	mu    sync.Mutex
	saved []domain.Asset
}

func (m *memoryAssets) SaveImage(_ context.Context, mime string, w, h int, data []byte, source domain.AssetSource) (domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := domain.Asset{StorageKey: "images/test.png", MIMEType: mime, Width: w, Height: h, Size: int64(len(data)), Source: source}
	m.saved = append(m.saved, a)
	return a, nil
}

func reply(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{}}
}

func textReply(text string) *http.Response {
	return reply(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"`+text+`"}]}}]}`)
}

func clientsFor(t *testing.T, key string, rt roundTripFunc) staticClients {
	t.Helper()
	c, err := genai.NewClient(genai.Options{
		APIKey:     key,
		BaseURL:    "https://gemini.test/v1beta",
		HTTPClient: &http.Client{Transport: rt},
	})
	require.NoError(t, err)
	return staticClients{client: c}
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))))
	return buf.Bytes()
}

func TestEmptyPromptFailsWithoutNetwork(t *testing.T) {
	var calls int32
	clients := clientsFor(t, "key", func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return textReply("unused"), nil
	})
	ctrl := NewDescriptionController(Deps{Clients: clients})

	view, err := ctrl.Generate(context.Background(), DescriptionInput{ProductName: "Mug", Details: "   "})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, view.State)
	assert.Equal(t, genai.KindInvalidInput, view.ErrorKind)
	assert.NotEmpty(t, view.Error)
	assert.False(t, view.ShowUseResult)
	assert.False(t, view.ShowCredentialPrompt)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestMissingCredentialPromptsForKey(t *testing.T) {
	clients := clientsFor(t, "", func(*http.Request) (*http.Response, error) {
		t.Fatal("network must not be used")
		return nil, nil
	})
	ctrl := NewDescriptionController(Deps{Clients: clients})

	view, err := ctrl.Generate(context.Background(), DescriptionInput{Details: "red ceramic mug"})
	require.NoError(t, err)
	assert.Equal(t, genai.KindMissingCredential, view.ErrorKind)
	assert.True(t, view.ShowCredentialPrompt)
}

func TestDescriptionGenerateAndAccept(t *testing.T) {
	var gotPath string
	clients := clientsFor(t, "key", func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		return textReply("A glossy red mug."), nil
	})
	draft := domain.NewListingDraft()
	ctrl := NewDescriptionController(Deps{Clients: clients, Draft: draft})

	_, err := ctrl.Accept(context.Background())
	assert.ErrorIs(t, err, ErrNothingToAccept)

	view, err := ctrl.Generate(context.Background(), DescriptionInput{ProductName: "Mug", Details: "red ceramic mug", Tone: "concise"})
	require.NoError(t, err)
	assert.Equal(t, "A glossy red mug.", view.Text)
	assert.True(t, view.ShowUseResult)
	assert.Empty(t, view.Error)
	assert.Equal(t, "/v1beta/models/gemini-1.5-pro:generateContent", gotPath)

	listing, err := ctrl.Accept(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A glossy red mug.", listing.Description)
	assert.Equal(t, "A glossy red mug.", draft.Snapshot().Description)
}

func TestInvalidCredentialShowsPrompt(t *testing.T) {
	clients := clientsFor(t, "bad", func(*http.Request) (*http.Response, error) {
		return reply(http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key."}}`), nil
	})
	ctrl := NewDescriptionController(Deps{Clients: clients})

	view, err := ctrl.Generate(context.Background(), DescriptionInput{Details: "mug"})
	require.NoError(t, err)
	assert.Equal(t, genai.KindInvalidCredential, view.ErrorKind)
	assert.True(t, view.ShowCredentialPrompt)
	assert.False(t, view.ShowUseResult)
}

func TestSecondTriggerWhilePendingIsBusy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	clients := clientsFor(t, "key", func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-release
		return textReply("done"), nil
	})
	ctrl := NewDescriptionController(Deps{Clients: clients})

	done := make(chan View, 1)
	go func() {
		v, _ := ctrl.Generate(context.Background(), DescriptionInput{Details: "first"})
		done <- v
	}()
	<-entered

	assert.Equal(t, StatePending, ctrl.View().State)
	_, err := ctrl.Generate(context.Background(), DescriptionInput{Details: "second"})
	assert.ErrorIs(t, err, ErrBusy)
	_, err = ctrl.Accept(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	first := <-done
	assert.Equal(t, StateIdle, first.State)
	assert.Equal(t, "done", first.Text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestImageGenerateAcceptStoresAsset(t *testing.T) {
	img := tinyPNG(t)
	body := `{"candidates":[{"content":{"parts":[{"text":"Studio shot"},{"inlineData":{"mimeType":"image/png","data":"` +
		base64.StdEncoding.EncodeToString(img) + `"}}]}}]}`
	clients := clientsFor(t, "key", func(r *http.Request) (*http.Response, error) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash-exp-image-generation")
		return reply(http.StatusOK, body), nil
	})
	assets := &memoryAssets{}
	draft := domain.NewListingDraft()
	ctrl := NewImageController(Deps{Clients: clients, Draft: draft, Assets: assets})

	view, err := ctrl.Generate(context.Background(), ImageInput{Prompt: "red mug"})
	require.NoError(t, err)
	assert.Equal(t, "Studio shot", view.Text)
	assert.Equal(t, base64.StdEncoding.EncodeToString(img), view.ImageData)
	assert.Equal(t, "image/png", view.MIMEType)
	assert.True(t, view.ShowUseResult)

	listing, err := ctrl.Accept(context.Background())
	require.NoError(t, err)
	require.NotNil(t, listing.Image)
	assert.Equal(t, 3, listing.Image.Width)
	assert.Equal(t, 2, listing.Image.Height)
	assert.Equal(t, domain.AssetSourceGenerated, listing.Image.Source)
	require.Len(t, assets.saved, 1)
}

func TestImageTextOnlyReplyIsNotAcceptable(t *testing.T) {
	clients := clientsFor(t, "key", func(*http.Request) (*http.Response, error) {
		return textReply("I can only describe it."), nil
	})
	ctrl := NewImageController(Deps{Clients: clients, Assets: &memoryAssets{}})

	view, err := ctrl.Generate(context.Background(), ImageInput{Prompt: "red mug"})
	require.NoError(t, err)
	assert.Equal(t, genai.KindNoImage, view.ErrorKind)
	assert.Equal(t, "I can only describe it.", view.Text)
	assert.False(t, view.ShowUseResult)

	_, err = ctrl.Accept(context.Background())
	assert.ErrorIs(t, err, ErrNothingToAccept)
}

func TestImagePlaceholderWhenOptedIn(t *testing.T) {
	clients := clientsFor(t, "key", func(*http.Request) (*http.Response, error) {
		return reply(http.StatusServiceUnavailable, `{"error":{"message":"unavailable"}}`), nil
	})
	assets := &memoryAssets{}
	ctrl := NewImageController(Deps{Clients: clients, Assets: assets})

	view, err := ctrl.Generate(context.Background(), ImageInput{Prompt: "red mug", PlaceholderOnFailure: true})
	require.NoError(t, err)
	assert.True(t, view.Placeholder)
	assert.NotEmpty(t, view.ImageData)

	listing, err := ctrl.Accept(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AssetSourcePlaceholder, listing.Image.Source)
}

func TestImageToTextUsesSelectedImageAndFallback(t *testing.T) {
	var paths []string
	clients := clientsFor(t, "key", func(r *http.Request) (*http.Response, error) {
		paths = append(paths, r.URL.Path)
		if strings.Contains(r.URL.Path, "gemini-2.0-flash:") {
			return reply(http.StatusInternalServerError, `{"error":{"message":"internal"}}`), nil
		}
		return textReply("Handmade canvas tote."), nil
	})
	bus := events.NewBus()
	draft := domain.NewListingDraft()
	ctrl := NewImageToTextController(Deps{
		Clients: clients,
		Bus:     bus,
		Draft:   draft,
		Models:  Models{Vision: genai.ModelGemini20Flash, VisionFallback: genai.ModelGeminiProVision},
	})

	view, err := ctrl.Describe(context.Background(), DescribeInput{})
	require.NoError(t, err)
	assert.Equal(t, genai.KindInvalidInput, view.ErrorKind)
	assert.Empty(t, paths)

	bus.ImageSelected.Publish(context.Background(), events.ImageSelected{FileName: "tote.png", MIMEType: "image/png", Data: tinyPNG(t)})
	assert.Equal(t, "tote.png", ctrl.SelectedFileName())

	view, err = ctrl.Describe(context.Background(), DescribeInput{ProductName: "Tote"})
	require.NoError(t, err)
	assert.Equal(t, "Handmade canvas tote.", view.Text)
	assert.Equal(t, []string{
		"/v1beta/models/gemini-2.0-flash:generateContent",
		"/v1beta/models/gemini-pro-vision:generateContent",
	}, paths)

	listing, err := ctrl.Accept(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Handmade canvas tote.", listing.Description)
}

func TestImageToTextNoFallbackOnSafetyBlock(t *testing.T) {
	var calls int32
	clients := clientsFor(t, "key", func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return reply(http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`), nil
	})
	ctrl := NewImageToTextController(Deps{
		Clients: clients,
		Models:  Models{VisionFallback: genai.ModelGeminiProVision},
	})

	view, err := ctrl.Describe(context.Background(), DescribeInput{Image: &genai.InlineImage{MIMEType: "image/png", Data: tinyPNG(t)}})
	require.NoError(t, err)
	assert.Equal(t, genai.KindSafetyBlocked, view.ErrorKind)
	assert.Contains(t, view.Error, "SAFETY")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAttributesParsed(t *testing.T) {
	clients := clientsFor(t, "key", func(*http.Request) (*http.Response, error) {
		return textReply(`{\"category\":\"bag\",\"color\":\"beige\",\"useCases\":[\"shopping\"]}`), nil
	})
	ctrl := NewImageToTextController(Deps{Clients: clients})

	view, err := ctrl.Attributes(context.Background(), AttributesInput{Image: &genai.InlineImage{MIMEType: "image/png", Data: tinyPNG(t)}})
	require.NoError(t, err)
	require.NotNil(t, view.Attributes)
	assert.Equal(t, "bag", view.Attributes.Category)
	assert.Equal(t, []string{"shopping"}, view.Attributes.UseCases)
	assert.False(t, view.ShowUseResult)
}

func TestEditVariationRequiresImage(t *testing.T) {
	clients := clientsFor(t, "key", func(*http.Request) (*http.Response, error) {
		return textReply("Here is my idea."), nil
	})
	ctrl := NewImageEditController(Deps{Clients: clients, Assets: &memoryAssets{}})
	src := &genai.InlineImage{MIMEType: "image/png", Data: tinyPNG(t)}

	view, err := ctrl.Edit(context.Background(), EditInput{Instruction: "autumn theme", Mode: EditModeVariation, Image: src})
	require.NoError(t, err)
	assert.Equal(t, genai.KindNoImage, view.ErrorKind)
	assert.Equal(t, "Here is my idea.", view.Text)

	view, err = ctrl.Edit(context.Background(), EditInput{Instruction: "brighter", Mode: EditModeEdit, Image: src})
	require.NoError(t, err)
	assert.Empty(t, view.Error)
	assert.True(t, view.ShowUseResult)

	listing, err := ctrl.Accept(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Here is my idea.", listing.Description)
}

func TestEditRejectsUnknownMode(t *testing.T) {
	ctrl := NewImageEditController(Deps{})
	view, err := ctrl.Edit(context.Background(), EditInput{Instruction: "x", Mode: "sharpen"})
	require.NoError(t, err)
	assert.Equal(t, genai.KindInvalidInput, view.ErrorKind)
}

func TestDeadlineMarksViewTimedOut(t *testing.T) {
	c, err := genai.NewClient(genai.Options{
		APIKey:  "key",
		BaseURL: "https://gemini.test/v1beta",
		Timeout: 10 * time.Millisecond,
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			<-r.Context().Done()
			return nil, r.Context().Err()
		})},
	})
	require.NoError(t, err)
	ctrl := NewDescriptionController(Deps{Clients: staticClients{client: c}})

	view, err := ctrl.Generate(context.Background(), DescriptionInput{Details: "mug"})
	require.NoError(t, err)
	assert.Equal(t, genai.KindTransport, view.ErrorKind)
	assert.True(t, view.TimedOut)
}
