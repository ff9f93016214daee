package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"listingai/internal/controller"
	"listingai/internal/events"
	"listingai/internal/imageutil"
	"listingai/internal/middleware"
	"listingai/internal/providers/genai"
	"listingai/internal/providers/prompt"
)

type describeRequest struct {
	ProductName      string `json:"product_name"`
	Tone             string `json:"tone"`
	MaxLength        int    `json:"max_length"`
	IncludeFeatures  *bool  `json:"include_features"`
	IncludeMaterials *bool  `json:"include_materials"`
	IncludeUseCases  *bool  `json:"include_use_cases"`
	DataURL          string `json:"data_url"`
}

type imageOverride struct {
	DataURL string `json:"data_url"`
}

type editRequest struct {
	Instruction string              `json:"instruction"`
	Mode        controller.EditMode `json:"mode"`
	DataURL     string              `json:"data_url"`
}

type photoSelection struct {
	Index *int `json:"index"`
}

type selectionResponse struct {
	FileName string `json:"file_name,omitempty"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
}

func (a *App) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	var in controller.DescriptionInput
	if !a.decode(w, r, &in) {
		return
	}
	in.Locale = middleware.LocaleFromContext(r.Context())
	v, err := a.core.Description.Generate(r.Context(), in)
	a.view(w, r, v, err)
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var in controller.ImageInput
	if !a.decode(w, r, &in) {
		return
	}
	in.Locale = middleware.LocaleFromContext(r.Context())
	v, err := a.core.Image.Generate(r.Context(), in)
	a.view(w, r, v, err)
}

func (a *App) GeneratePhotos(w http.ResponseWriter, r *http.Request) {
	var in controller.PhotosInput
	if !a.decode(w, r, &in) {
		return
	}
	v, err := a.core.Photos.Generate(r.Context(), in)
	a.view(w, r, v, err)
}

// SelectPhoto picks which generated product photo accept stores.
func (a *App) SelectPhoto(w http.ResponseWriter, r *http.Request) {
	var req photoSelection
	if !a.decode(w, r, &req) {
		return
	}
	if req.Index == nil {
		a.error(w, http.StatusBadRequest, "invalid_input", "index is required")
		return
	}
	v, err := a.core.Photos.Select(*req.Index)
	switch {
	case errors.Is(err, controller.ErrInvalidSelection):
		a.json(w, http.StatusBadRequest, errorEnvelope{Error: apiError{Code: "invalid_input", Message: err.Error()}, View: &v})
	case errors.Is(err, controller.ErrNothingToAccept):
		a.json(w, http.StatusConflict, errorEnvelope{Error: apiError{Code: "nothing_to_accept", Message: err.Error()}, View: &v})
	default:
		a.view(w, r, v, err)
	}
}

// SelectImage accepts the product photo as a multipart "image" field or a
// JSON {data_url}, shrinks it to the inline size limit and announces it.
func (a *App) SelectImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var (
		name string
		data []byte
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		name, data, err = readMultipartImage(r)
	} else {
		var req imageOverride
		if !a.decode(w, r, &req) {
			return
		}
		_, data, err = imageutil.ParseDataURL(req.DataURL)
	}
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	img, err := fitImage(data)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	info, _ := imageutil.Detect(img.Data)

	a.core.Bus.ImageSelected.Publish(r.Context(), events.ImageSelected{
		FileName: name,
		MIMEType: img.MIMEType,
		Data:     img.Data,
		DataURL:  imageutil.EncodeDataURL(img.MIMEType, img.Data),
	})
	a.json(w, http.StatusOK, selectionResponse{
		FileName: name,
		MIMEType: img.MIMEType,
		Width:    info.Width,
		Height:   info.Height,
		Size:     len(img.Data),
	})
}

func (a *App) DescribeImage(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if !a.decode(w, r, &req) {
		return
	}
	img, ok := a.override(w, req.DataURL)
	if !ok {
		return
	}
	opts := prompt.DefaultTextOptions()
	if req.Tone != "" {
		opts.Tone = req.Tone
	}
	if req.MaxLength > 0 {
		opts.MaxLength = req.MaxLength
	}
	if req.IncludeFeatures != nil {
		opts.IncludeFeatures = *req.IncludeFeatures
	}
	if req.IncludeMaterials != nil {
		opts.IncludeMaterials = *req.IncludeMaterials
	}
	if req.IncludeUseCases != nil {
		opts.IncludeUseCases = *req.IncludeUseCases
	}
	v, err := a.core.ImageToText.Describe(r.Context(), controller.DescribeInput{
		ProductName: req.ProductName,
		Options:     opts,
		Image:       img,
		Locale:      middleware.LocaleFromContext(r.Context()),
	})
	a.view(w, r, v, err)
}

func (a *App) ImageAttributes(w http.ResponseWriter, r *http.Request) {
	var req imageOverride
	if !a.decode(w, r, &req) {
		return
	}
	img, ok := a.override(w, req.DataURL)
	if !ok {
		return
	}
	v, err := a.core.ImageToText.Attributes(r.Context(), controller.AttributesInput{
		Image:  img,
		Locale: middleware.LocaleFromContext(r.Context()),
	})
	a.view(w, r, v, err)
}

func (a *App) EditImage(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !a.decode(w, r, &req) {
		return
	}
	img, ok := a.override(w, req.DataURL)
	if !ok {
		return
	}
	v, err := a.core.ImageEdit.Edit(r.Context(), controller.EditInput{
		Instruction: req.Instruction,
		Mode:        req.Mode,
		Image:       img,
		Locale:      middleware.LocaleFromContext(r.Context()),
	})
	a.view(w, r, v, err)
}

func (a *App) FeatureView(w http.ResponseWriter, r *http.Request) {
	c, ok := a.core.Controller(controller.Feature(chi.URLParam(r, "feature")))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown feature")
		return
	}
	a.json(w, http.StatusOK, c.View())
}

// AcceptFeature applies the feature's last successful result to the listing.
func (a *App) AcceptFeature(w http.ResponseWriter, r *http.Request) {
	feature := controller.Feature(chi.URLParam(r, "feature"))
	c, ok := a.core.Controller(feature)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown feature")
		return
	}
	a.accepted(w, r, feature, func() error {
		_, err := c.Accept(r.Context())
		return err
	})
}

// override decodes an optional per-request image. A blank data URL means
// "use the selected image".
func (a *App) override(w http.ResponseWriter, dataURL string) (*genai.InlineImage, bool) {
	if strings.TrimSpace(dataURL) == "" {
		return nil, true
	}
	_, data, err := imageutil.ParseDataURL(dataURL)
	if err == nil {
		var img *genai.InlineImage
		if img, err = fitImage(data); err == nil {
			return img, true
		}
	}
	a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
	return nil, false
}

func fitImage(data []byte) (*genai.InlineImage, error) {
	mime, out, err := imageutil.Fit(data, imageutil.MaxDimension)
	if err != nil {
		return nil, err
	}
	return &genai.InlineImage{MIMEType: mime, Data: out}, nil
}

func readMultipartImage(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return "", nil, errors.New("invalid multipart form")
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		return "", nil, errors.New("image file is required")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.New("failed to read image")
	}
	return fileName(header), data, nil
}

func fileName(h *multipart.FileHeader) string {
	if h == nil {
		return ""
	}
	return h.Filename
}
