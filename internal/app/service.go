// Package app wires every production component together and drives the
// cycle-by-cycle pipeline.
package app

import (
	"context"
	"log/slog"

	"reelforge/internal/archive"
	"reelforge/internal/compose"
	"reelforge/internal/distribution"
	"reelforge/internal/music"
	"reelforge/internal/script"
	"reelforge/internal/speech"
	"reelforge/internal/state"
	"reelforge/internal/stock"
	"reelforge/internal/trends"
	"reelforge/pkg/config"
)

// topicSource yields the next topic for a cycle.
type topicSource interface {
	Next(ctx context.Context, cycle int64, voiceReel bool) (trends.Topic, error)
}

// visualSource finds and downloads background footage.
type visualSource interface {
	Search(ctx context.Context, query string, count int) ([]stock.Video, error)
	Download(ctx context.Context, videoURL, dest string) error
}

// composer owns encoder invocations.
type composer interface {
	Compose(ctx context.Context, req compose.Request) error
	ComposeSlideshow(ctx context.Context, req compose.SlideshowRequest) error
	Duration(ctx context.Context, path string) (float64, error)
}

// reelArchive stores finished reels durably.
type reelArchive interface {
	Store(ctx context.Context, localPath string) (string, error)
}

// Service holds every collaborator a production cycle needs. Optional
// collaborators (scripts, music, uploaders, archive) may be nil; the pipeline
// degrades per cycle kind.
type Service struct {
	cfg       *config.Config
	store     *state.Store
	topics    topicSource
	scripts   script.Generator
	voices    speech.Synthesizer
	visuals   visualSource
	music     music.Source
	engine    composer
	uploaders []distribution.Uploader
	sentinel  *distribution.BlockSentinel
	archive   reelArchive
	logger    *slog.Logger
}

type ServiceOptions struct {
	Config    *config.Config
	Store     *state.Store
	Topics    topicSource
	Scripts   script.Generator
	Voices    speech.Synthesizer
	Visuals   visualSource
	Music     music.Source
	Engine    composer
	Uploaders []distribution.Uploader
	Sentinel  *distribution.BlockSentinel
	Archive   reelArchive
	Logger    *slog.Logger
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:       opts.Config,
		store:     opts.Store,
		topics:    opts.Topics,
		scripts:   opts.Scripts,
		voices:    opts.Voices,
		visuals:   opts.Visuals,
		music:     opts.Music,
		engine:    opts.Engine,
		uploaders: opts.Uploaders,
		sentinel:  opts.Sentinel,
		archive:   opts.Archive,
		logger:    opts.Logger,
	}
}

func (s *Service) Store() *state.Store {
	return s.store
}

func (s *Service) Sentinel() *distribution.BlockSentinel {
	return s.sentinel
}

var _ reelArchive = (*archive.GCSArchive)(nil)
