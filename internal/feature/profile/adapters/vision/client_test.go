package vision

import (
	"context"
	"errors"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"

	"myblog/internal/feature/profile/usecase"
)

func moderatorReturning(resp *visionpb.BatchAnnotateImagesResponse, err error) (*SafeSearchModerator, *visionpb.BatchAnnotateImagesRequest) {
	var captured visionpb.BatchAnnotateImagesRequest
	m := &SafeSearchModerator{annotate: func(_ context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		captured.Requests = req.Requests
		return resp, err
	}}
	return m, &captured
}

func annotated(a *visionpb.SafeSearchAnnotation) *visionpb.BatchAnnotateImagesResponse {
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{SafeSearchAnnotation: a}},
	}
}

func TestSafeSearchModerator_Check(t *testing.T) {
	tests := []struct {
		name       string
		annotation *visionpb.SafeSearchAnnotation
		wantErr    error
	}{
		{"clean picture", &visionpb.SafeSearchAnnotation{Adult: visionpb.Likelihood_VERY_UNLIKELY, Racy: visionpb.Likelihood_POSSIBLE}, nil},
		{"no annotation", nil, nil},
		{"likely adult", &visionpb.SafeSearchAnnotation{Adult: visionpb.Likelihood_LIKELY}, usecase.ErrImageRejected},
		{"very likely violence", &visionpb.SafeSearchAnnotation{Violence: visionpb.Likelihood_VERY_LIKELY}, usecase.ErrImageRejected},
		{"likely racy passes", &visionpb.SafeSearchAnnotation{Racy: visionpb.Likelihood_LIKELY}, nil},
		{"very likely racy", &visionpb.SafeSearchAnnotation{Racy: visionpb.Likelihood_VERY_LIKELY}, usecase.ErrImageRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, req := moderatorReturning(annotated(tt.annotation), nil)

			err := m.Check(context.Background(), []byte("img"))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			require.Len(t, req.Requests, 1)
			assert.Equal(t, []byte("img"), req.Requests[0].Image.Content)
			assert.Equal(t, visionpb.Feature_SAFE_SEARCH_DETECTION, req.Requests[0].Features[0].Type)
		})
	}
}

func TestSafeSearchModerator_Check_Errors(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		m, _ := moderatorReturning(nil, errors.New("deadline exceeded"))
		err := m.Check(context.Background(), []byte("img"))
		assert.ErrorContains(t, err, "deadline exceeded")
		assert.NotErrorIs(t, err, usecase.ErrImageRejected)
	})

	t.Run("per-image error", func(t *testing.T) {
		resp := &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{Error: &status.Status{Message: "bad image"}}},
		}
		m, _ := moderatorReturning(resp, nil)
		assert.ErrorContains(t, m.Check(context.Background(), []byte("img")), "bad image")
	})

	t.Run("empty response", func(t *testing.T) {
		m, _ := moderatorReturning(&visionpb.BatchAnnotateImagesResponse{}, nil)
		assert.NoError(t, m.Check(context.Background(), []byte("img")))
	})
}

func TestSafeSearchModerator_CloseWithoutClient(t *testing.T) {
	assert.NoError(t, (&SafeSearchModerator{}).Close())
}
