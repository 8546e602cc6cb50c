// Package vision moderates profile pictures with Google Cloud Vision SafeSearch.
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"myblog/internal/feature/profile/usecase"
)

type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// SafeSearchModerator rejects pictures that SafeSearch rates as likely adult or violent, or
// very likely racy.
type SafeSearchModerator struct {
	client   *gvision.ImageAnnotatorClient
	annotate annotateFunc
}

var _ usecase.ImageModerator = (*SafeSearchModerator)(nil)

// NewSafeSearchModerator creates a moderator using Application Default Credentials.
func NewSafeSearchModerator(ctx context.Context) (*SafeSearchModerator, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &SafeSearchModerator{
		client: client,
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
			return client.BatchAnnotateImages(ctx, req)
		},
	}, nil
}

// Close releases the Vision API client.
func (m *SafeSearchModerator) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

// Check implements usecase.ImageModerator.
func (m *SafeSearchModerator) Check(ctx context.Context, imageData []byte) error {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
				},
			},
		},
	}

	resp, err := m.annotate(ctx, req)
	if err != nil {
		return fmt.Errorf("vision API request failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil
	}
	if resp.Responses[0].Error != nil {
		return fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	if unsafe(resp.Responses[0].SafeSearchAnnotation) {
		return usecase.ErrImageRejected
	}
	return nil
}

func unsafe(a *visionpb.SafeSearchAnnotation) bool {
	if a == nil {
		return false
	}
	return a.Adult >= visionpb.Likelihood_LIKELY ||
		a.Violence >= visionpb.Likelihood_LIKELY ||
		a.Racy >= visionpb.Likelihood_VERY_LIKELY
}
