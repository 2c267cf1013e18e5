package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/annomi/pkg/dataset"
	"github.com/hazyhaar/annomi/pkg/kit"
	"github.com/hazyhaar/annomi/pkg/split"
	"github.com/hazyhaar/annomi/pkg/textnorm"
	"github.com/hazyhaar/annomi/pkg/topic"
)

// MaxNormalizeTexts bounds a single normalize request.
const MaxNormalizeTexts = 100

// ErrBadRequest marks errors caused by the caller's input.
var ErrBadRequest = errors.New("bad request")

// Shared request/response types used by both HTTP and MCP transports.

type healthResponse struct {
	Status  string `json:"status"`
	Rows    int    `json:"rows"`
	Dropped int    `json:"dropped"`
	Cleaned bool   `json:"cleaned"`
}

type topicsReq struct {
	Limit int
}

type topicsResponse struct {
	Total  int           `json:"total"`
	Topics []topic.Count `json:"topics"`
}

type normalizeReq struct {
	Texts []string `json:"texts"`
}

type normalizeResponse struct {
	Texts []string `json:"texts"`
}

type splitReq struct {
	Target   string  `json:"target"`
	TestSize float64 `json:"test_size,omitempty"`
	Seed     *uint64 `json:"seed,omitempty"`
	Fallback *bool   `json:"multi_topic_fallback,omitempty"`
}

type splitResponse struct {
	Target  string            `json:"target"`
	Train   int               `json:"train"`
	Test    int               `json:"test"`
	Classes []string          `json:"classes"`
	Groups  []split.GroupStat `json:"groups"`
}

// Service holds the dataset and text pipeline the endpoints serve.
type Service struct {
	data     *dataset.Dataset
	pipeline textnorm.Pipeline
}

// NewService builds a Service over an already processed or loaded dataset.
func NewService(d *dataset.Dataset) (*Service, error) {
	p, err := d.TextPipeline()
	if err != nil {
		return nil, fmt.Errorf("build text pipeline: %w", err)
	}
	return &Service{data: d, pipeline: p}, nil
}

func healthEndpoint(s *Service) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return healthResponse{
			Status:  "ok",
			Rows:    s.data.Len(),
			Dropped: s.data.Dropped(),
			Cleaned: s.data.Cleaned(),
		}, nil
	}
}

func topicsEndpoint(s *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*topicsReq)
		counts := s.data.TopicCounts()
		resp := topicsResponse{Total: len(counts), Topics: counts}
		if req.Limit > 0 && req.Limit < len(counts) {
			resp.Topics = counts[:req.Limit]
		}
		return resp, nil
	}
}

func normalizeEndpoint(s *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*normalizeReq)
		if len(req.Texts) == 0 {
			return nil, fmt.Errorf("%w: texts array is empty", ErrBadRequest)
		}
		if len(req.Texts) > MaxNormalizeTexts {
			return nil, fmt.Errorf("%w: too many texts (max %d, got %d)", ErrBadRequest, MaxNormalizeTexts, len(req.Texts))
		}
		out := make([]string, len(req.Texts))
		for i, t := range req.Texts {
			out[i] = s.pipeline.Normalize(t)
		}
		return normalizeResponse{Texts: out}, nil
	}
}

func splitEndpoint(s *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*splitReq)
		if req.Target == "" {
			return nil, fmt.Errorf("%w: missing target", ErrBadRequest)
		}
		opts := dataset.DefaultSplitOptions()
		if req.TestSize != 0 {
			opts.TestSize = req.TestSize
		}
		if req.Seed != nil {
			opts.Rand = split.NewRand(*req.Seed)
		}
		if req.Fallback != nil {
			opts.MultiTopicFallback = *req.Fallback
		}

		res, err := s.data.SplitTarget(req.Target, opts)
		if err != nil {
			if errors.Is(err, dataset.ErrMissingColumn) || errors.Is(err, dataset.ErrInvalidTarget) ||
				errors.Is(err, split.ErrInvalidTestSize) ||
				errors.Is(err, split.ErrInsufficientStratumSize) {
				return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
			}
			return nil, err
		}
		return splitResponse{
			Target:  req.Target,
			Train:   res.Train.Len(),
			Test:    res.Test.Len(),
			Classes: res.Encoder.Classes(),
			Groups:  res.Groups,
		}, nil
	}
}
