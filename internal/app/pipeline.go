package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"reelforge/internal/compose"
	"reelforge/internal/dialogue"
	"reelforge/internal/distribution"
	"reelforge/internal/music"
	"reelforge/internal/script"
	"reelforge/internal/speech"
	"reelforge/internal/state"
	"reelforge/internal/stock"
	"reelforge/internal/trends"
)

const stockResultCount = 10

// RunCycle executes one production cycle end to end: pick a topic, branch
// into a voice or music reel, produce the artifact, hand it to the uploaders
// and clean up. Cleanup is gated on composition success only; an upload
// failure still cleans up. Any stage failure aborts the cycle and is
// returned for logging; the caller decides when the next cycle starts.
func (s *Service) RunCycle(ctx context.Context) error {
	cycle, err := s.store.IncrementCounter()
	if err != nil {
		return fmt.Errorf("advance reel counter: %w", err)
	}

	voiceReel := s.cfg.Music.Online &&
		s.cfg.Pipeline.VoiceReelEvery > 0 &&
		cycle%int64(s.cfg.Pipeline.VoiceReelEvery) == 0

	topic, err := s.topics.Next(ctx, cycle, voiceReel)
	if err != nil {
		return fmt.Errorf("select topic: %w", err)
	}

	logger := s.logger.With("cycle", cycle, "topic", topic.Title, "kind", reelKind(voiceReel))
	logger.Info("starting production cycle")

	job, err := NewProductionJob(s.cfg.Video.WorkDir, topic, cycle)
	if err != nil {
		return fmt.Errorf("prepare job: %w", err)
	}
	defer func() {
		if cleanupErr := job.Cleanup(); cleanupErr != nil {
			logger.Warn("cleanup failed", "error", cleanupErr)
		}
	}()

	outputPath, err := s.produce(ctx, job, voiceReel)
	if err != nil {
		return fmt.Errorf("cycle %d (%s): %w", cycle, topic.Title, err)
	}
	logger.Info("reel composed", "output", outputPath)

	if s.archive != nil {
		if object, archiveErr := s.archive.Store(ctx, outputPath); archiveErr != nil {
			logger.Warn("archive upload failed", "error", archiveErr)
		} else {
			logger.Info("reel archived", "object", object)
		}
	}

	s.distribute(ctx, logger, topic, outputPath)
	return nil
}

func reelKind(voiceReel bool) string {
	if voiceReel {
		return "voice"
	}
	return "music"
}

// produce builds the reel and returns the finished artifact path, which
// lives outside the job working directory so cleanup never deletes it.
func (s *Service) produce(ctx context.Context, job *ProductionJob, voiceReel bool) (string, error) {
	outputPath := filepath.Join(s.cfg.Video.OutputDir, fmt.Sprintf("reel_%d.mp4", job.Cycle))

	if voiceReel {
		if err := s.produceVoiceReel(ctx, job, outputPath); err != nil {
			return "", err
		}
	} else {
		if err := s.produceMusicReel(ctx, job, outputPath); err != nil {
			return "", err
		}
	}

	job.MarkComposed()
	return outputPath, nil
}

func (s *Service) produceVoiceReel(ctx context.Context, job *ProductionJob, outputPath string) error {
	if s.scripts == nil || s.voices == nil {
		return fmt.Errorf("voice reel requested but script or speech backends are not configured")
	}

	duration := s.cfg.Content.YouTubeDuration
	narrative := script.IsNarrative(job.Topic.Title)

	text, err := s.scripts.Generate(ctx, script.Request{
		Topic:    job.Topic.Title,
		Duration: duration,
		Language: s.cfg.Content.Language,
		Dialogue: narrative,
	})
	if err != nil {
		return fmt.Errorf("generate script: %w", err)
	}

	if narrative {
		return s.produceDialogueReel(ctx, job, text, outputPath)
	}

	narrationPath := job.Path("narration.mp3")
	if err := s.voices.Synthesize(ctx, text, 0, narrationPath); err != nil {
		return fmt.Errorf("synthesize narration: %w", err)
	}

	candidates, track, err := s.acquireAssets(ctx, job, false)
	if err != nil {
		return err
	}

	videoPath, err := s.selectAndDownloadVideo(ctx, job, candidates, audioIdentifier(track, "narration"))
	if err != nil {
		return err
	}

	musicPath := ""
	if track != nil {
		musicPath = track.Path
	}
	if err := s.engine.Compose(ctx, compose.Request{
		VideoPath:     videoPath,
		NarrationPath: narrationPath,
		MusicPath:     musicPath,
		Duration:      float64(duration),
		OutputPath:    outputPath,
	}); err != nil {
		return fmt.Errorf("compose reel: %w", err)
	}
	return nil
}

func (s *Service) produceDialogueReel(ctx context.Context, job *ProductionJob, text, outputPath string) error {
	transcript := dialogue.Parse(text)
	if transcript.IsEmpty() {
		return fmt.Errorf("script has no parseable dialogue lines")
	}

	segments, err := speech.SynthesizeDialogue(ctx, s.voices, transcript, job.WorkDir)
	if err != nil {
		return fmt.Errorf("synthesize dialogue: %w", err)
	}

	images, err := s.speakerImages(ctx, job, transcript.Speakers())
	if err != nil {
		return err
	}

	slides := make([]compose.SlideshowSegment, 0, len(segments))
	for _, segment := range segments {
		slides = append(slides, compose.SlideshowSegment{
			ImagePath: images[segment.Speaker],
			AudioPath: segment.AudioPath,
			Label:     segment.Speaker,
		})
	}

	if err := s.engine.ComposeSlideshow(ctx, compose.SlideshowRequest{
		Segments:   slides,
		WorkDir:    job.WorkDir,
		OutputPath: outputPath,
	}); err != nil {
		return fmt.Errorf("compose slideshow: %w", err)
	}
	return nil
}

// speakerImages downloads one character still per speaker, reusing poster
// frames from the stock search.
func (s *Service) speakerImages(ctx context.Context, job *ProductionJob, speakers []string) (map[string]string, error) {
	query := searchQuery(job.Topic, s.cfg.Content.Language)
	candidates, err := s.visuals.Search(ctx, query, stockResultCount)
	if err != nil {
		return nil, fmt.Errorf("search character stills: %w", err)
	}

	withImage := make([]stock.Video, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Image != "" {
			withImage = append(withImage, candidate)
		}
	}
	if len(withImage) == 0 {
		return nil, fmt.Errorf("no stills available for %q", query)
	}

	images := make(map[string]string, len(speakers))
	for i, speaker := range speakers {
		candidate := withImage[i%len(withImage)]
		dest := job.Path(fmt.Sprintf("speaker_%02d.jpg", i))
		if err := s.visuals.Download(ctx, candidate.Image, dest); err != nil {
			return nil, fmt.Errorf("download still for %s: %w", speaker, err)
		}
		images[speaker] = dest
	}
	return images, nil
}

func (s *Service) produceMusicReel(ctx context.Context, job *ProductionJob, outputPath string) error {
	candidates, track, err := s.acquireAssets(ctx, job, true)
	if err != nil {
		return err
	}

	videoPath, err := s.selectAndDownloadVideo(ctx, job, candidates, track.ID)
	if err != nil {
		return err
	}

	if err := s.engine.Compose(ctx, compose.Request{
		VideoPath:  videoPath,
		MusicPath:  track.Path,
		Duration:   float64(s.cfg.Content.InstagramDuration),
		OutputPath: outputPath,
	}); err != nil {
		return fmt.Errorf("compose reel: %w", err)
	}
	return nil
}

// acquireAssets runs the stock search and music acquisition concurrently.
// For voice reels the music track is optional ambiance; its failure is
// logged and tolerated. For music reels the track is the primary asset and
// its failure aborts the cycle.
func (s *Service) acquireAssets(ctx context.Context, job *ProductionJob, trackRequired bool) ([]stock.Video, *music.Track, error) {
	var candidates []stock.Video
	var track *music.Track

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		query := searchQuery(job.Topic, s.cfg.Content.Language)
		found, err := s.visuals.Search(groupCtx, query, stockResultCount)
		if err != nil {
			return fmt.Errorf("search stock footage: %w", err)
		}
		candidates = found
		return nil
	})

	group.Go(func() error {
		if s.music == nil {
			if trackRequired {
				return fmt.Errorf("no music sources configured")
			}
			return nil
		}
		acquired, err := s.music.Acquire(groupCtx, job.Cycle, job.WorkDir)
		if err != nil {
			if trackRequired {
				return fmt.Errorf("acquire track: %w", err)
			}
			s.logger.Warn("ambiance unavailable, composing without music", "error", err)
			return nil
		}
		track = acquired
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return candidates, track, nil
}

// selectAndDownloadVideo asks the dedup store for the first acceptable
// candidate and downloads it. The combination is recorded at selection time,
// before the download, so a crashed download never repeats the artifact.
func (s *Service) selectAndDownloadVideo(ctx context.Context, job *ProductionJob, candidates []stock.Video, audioID string) (string, error) {
	ids := make([]string, 0, len(candidates))
	byID := make(map[string]stock.Video, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.ID)
		byID[candidate.ID] = candidate
	}

	selected, err := s.store.SelectVideo(job.Topic.Title, audioID, ids)
	if err != nil {
		if errors.Is(err, state.ErrNoCandidates) {
			return "", fmt.Errorf("no stock footage for %q: %w", job.Topic.Title, err)
		}
		return "", fmt.Errorf("select background clip: %w", err)
	}

	dest := job.Path("background.mp4")
	if err := s.visuals.Download(ctx, byID[selected].URL, dest); err != nil {
		return "", fmt.Errorf("download background clip: %w", err)
	}
	return dest, nil
}

func audioIdentifier(track *music.Track, fallback string) string {
	if track != nil {
		return track.ID
	}
	return fallback
}

// distribute hands the artifact to every configured uploader. Failures are
// logged, never fatal to the cycle; a platform block raises the sentinel and
// suspends all uploads for the cooldown.
func (s *Service) distribute(ctx context.Context, logger *slog.Logger, topic trends.Topic, outputPath string) {
	if len(s.uploaders) == 0 {
		return
	}

	if active, until := s.sentinel.Active(); active {
		logger.Warn("uploads suspended by platform block", "until", until.Format(time.RFC3339))
		return
	}

	req := distribution.UploadRequest{
		FilePath:     outputPath,
		Title:        reelTitle(topic),
		Description:  reelDescription(topic),
		Tags:         reelTags(topic, s.cfg.YouTube.DefaultTags),
		Privacy:      s.cfg.YouTube.PrivacyStatus,
		FirstComment: firstComment(s.cfg.Instagram.FirstComment, topic),
	}

	for _, up := range s.uploaders {
		resp, err := s.uploadWithTimeout(ctx, up, req)
		if err != nil {
			var blockErr *distribution.PlatformBlockError
			if errors.As(err, &blockErr) {
				if setErr := s.sentinel.Set(); setErr != nil {
					logger.Warn("failed to raise block sentinel", "error", setErr)
				}
				logger.Warn("platform block detected, suspending uploads", "platform", blockErr.PlatformName)
				return
			}
			logger.Warn("upload failed", "platform", up.Platform(), "error", err)
			continue
		}
		logger.Info("reel uploaded", "platform", resp.Platform, "url", resp.URL)
	}
}

// uploadWithTimeout bounds an upload call. On expiry the call is abandoned,
// not cancelled: a slow platform may still finish the publish on its side,
// and cancelling mid-flight risks a half-published artifact.
func (s *Service) uploadWithTimeout(ctx context.Context, up distribution.Uploader, req distribution.UploadRequest) (*distribution.UploadResponse, error) {
	type result struct {
		resp *distribution.UploadResponse
		err  error
	}

	done := make(chan result, 1)
	go func() {
		resp, err := up.Upload(ctx, req)
		done <- result{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		return res.resp, res.err
	case <-time.After(s.cfg.Pipeline.UploadTimeout):
		return nil, fmt.Errorf("upload to %s timed out after %s, abandoning call", up.Platform(), s.cfg.Pipeline.UploadTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
