package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predictionsBody(t *testing.T, preds ...imagenPrediction) string {
	t.Helper()
	raw, err := json.Marshal(imagenPredictResponse{Predictions: preds})
	require.NoError(t, err)
	return string(raw)
}

func TestGenerateImagesSendsPredictRequest(t *testing.T) {
	var captured imagenPredictRequest
	client := newTestClient(t, ModelImagen3, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/imagen-3.0-generate-002:predict", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		return jsonResponse(http.StatusOK, predictionsBody(t,
			imagenPrediction{BytesBase64Encoded: base64.StdEncoding.EncodeToString([]byte("one")), MimeType: "image/png"},
			imagenPrediction{RAIFilteredReason: "filtered for safety"},
			imagenPrediction{BytesBase64Encoded: base64.StdEncoding.EncodeToString([]byte("two"))},
		)), nil
	})

	results, err := client.GenerateImages(context.Background(), "  red mug on oak table ", ImagesConfig{NumberOfImages: 3, AspectRatio: "16:9"})
	require.NoError(t, err)

	require.Len(t, captured.Instances, 1)
	assert.Equal(t, "red mug on oak table", captured.Instances[0].Prompt)
	assert.Equal(t, 3, captured.Parameters.SampleCount)
	assert.Equal(t, "16:9", captured.Parameters.AspectRatio)
	assert.Equal(t, "ALLOW_ADULT", captured.Parameters.PersonGeneration)

	require.Len(t, results, 2)
	assert.Equal(t, []byte("one"), results[0].ImageData)
	assert.Equal(t, []byte("two"), results[1].ImageData)
	assert.Equal(t, "image/png", results[1].MIMEType)
	assert.False(t, results[0].Placeholder)
}

func TestGenerateImagesDefaults(t *testing.T) {
	var captured imagenPredictRequest
	client := newTestClient(t, ModelImagen3, func(r *http.Request) (*http.Response, error) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		return jsonResponse(http.StatusOK, predictionsBody(t,
			imagenPrediction{BytesBase64Encoded: base64.StdEncoding.EncodeToString([]byte("x"))},
		)), nil
	})

	_, err := client.GenerateImages(context.Background(), "mug", ImagesConfig{})
	require.NoError(t, err)
	assert.Equal(t, 1, captured.Parameters.SampleCount)
	assert.Equal(t, "1:1", captured.Parameters.AspectRatio)
}

func TestGenerateImagesAllFiltered(t *testing.T) {
	client := newTestClient(t, ModelImagen3, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, predictionsBody(t, imagenPrediction{RAIFilteredReason: "person detected"})), nil
	})

	_, err := client.GenerateImages(context.Background(), "mug", ImagesConfig{NumberOfImages: 2})
	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, KindSafetyBlocked, genErr.Kind)
	assert.Contains(t, genErr.Error(), "person detected")
}

func TestGenerateImagesEmptyReply(t *testing.T) {
	client := newTestClient(t, ModelImagen3, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	_, err := client.GenerateImages(context.Background(), "mug", ImagesConfig{})
	assert.Equal(t, KindNoImage, KindOf(err))
}

func TestGenerateImagesValidatesWithoutRequest(t *testing.T) {
	offline := func(*http.Request) (*http.Response, error) {
		t.Fatal("network must not be used")
		return nil, nil
	}
	imagen := newTestClient(t, ModelImagen3, offline)
	cases := map[string]struct {
		client *Client
		prompt string
		cfg    ImagesConfig
	}{
		"too many":                      {imagen, "mug", ImagesConfig{NumberOfImages: MaxImages + 1}},
		"negative":                      {imagen, "mug", ImagesConfig{NumberOfImages: -1}},
		"bad aspect":                    {imagen, "mug", ImagesConfig{AspectRatio: "2:1"}},
		"blank prompt":                  {imagen, "  ", ImagesConfig{}},
		"gemini model":                  {newTestClient(t, ModelGemini20FlashImage, offline), "mug", ImagesConfig{}},
		"blank prompt with placeholder": {imagen, "", ImagesConfig{PlaceholderOnFailure: true}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.client.GenerateImages(context.Background(), tc.prompt, tc.cfg)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
}

func TestGenerateImagesMissingCredential(t *testing.T) {
	client, err := NewClient(Options{Model: ModelImagen3})
	require.NoError(t, err)

	_, err = client.GenerateImages(context.Background(), "mug", ImagesConfig{PlaceholderOnFailure: true})
	assert.Equal(t, KindMissingCredential, KindOf(err))
}

func TestGenerateImagesPlaceholderPerImage(t *testing.T) {
	client := newTestClient(t, ModelImagen3, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusForbidden, `{"error":{"message":"Imagen API is only accessible to billed users"}}`), nil
	})

	_, err := client.GenerateImages(context.Background(), "mug", ImagesConfig{NumberOfImages: 3})
	assert.Equal(t, KindInvalidCredential, KindOf(err))

	results, err := client.GenerateImages(context.Background(), "mug", ImagesConfig{
		NumberOfImages:       3,
		AspectRatio:          "16:9",
		PlaceholderOnFailure: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.True(t, res.Placeholder)
		cfg, err := png.DecodeConfig(bytes.NewReader(res.ImageData))
		require.NoError(t, err)
		assert.Equal(t, 640, cfg.Width)
		assert.Equal(t, 360, cfg.Height)
	}
	assert.NotEqual(t, results[0].ImageData, results[1].ImageData)
}
