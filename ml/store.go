package ml

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactStore holds the artifact currently served. Readers never block; a reload
// swaps in a complete new artifact.
type ArtifactStore struct {
	path    string
	logger  *zap.Logger
	current atomic.Pointer[Artifact]

	mu     sync.Mutex
	onSwap []func(*Artifact)
}

func NewArtifactStore(path string, logger *zap.Logger) *ArtifactStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactStore{path: filepath.Clean(path), logger: logger}
}

func (s *ArtifactStore) Current() *Artifact {
	return s.current.Load()
}

// OnSwap registers fn to run after every successful Set or Load.
func (s *ArtifactStore) OnSwap(fn func(*Artifact)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSwap = append(s.onSwap, fn)
}

func (s *ArtifactStore) Set(artifact *Artifact) {
	s.current.Store(artifact)
	s.mu.Lock()
	hooks := append([]func(*Artifact){}, s.onSwap...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(artifact)
	}
}

// Load reads the artifact file and makes it current. On failure the previous
// artifact stays in place.
func (s *ArtifactStore) Load() error {
	artifact, err := LoadArtifact(s.path)
	if err != nil {
		return err
	}
	if err := artifact.Schema.Check(); err != nil {
		s.logger.Warn("model artifact has no expected columns, predictions will be refused",
			zap.String("path", s.path))
	}
	s.Set(artifact)
	s.logger.Info("model artifact loaded",
		zap.String("path", s.path),
		zap.String("type", artifact.Type),
		zap.String("version", artifact.Version),
		zap.Int("columns", len(artifact.Schema.Columns)))
	return nil
}

// Watch reloads the artifact whenever its file is written or replaced. The watcher
// is registered before Watch returns; events are handled until ctx is done.
func (s *ArtifactStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors and deploy tools replace the file rather than write it.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.Load(); err != nil {
					s.logger.Error("model reload failed, keeping previous artifact",
						zap.String("path", s.path),
						zap.Error(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("model watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
