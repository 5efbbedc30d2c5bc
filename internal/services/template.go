package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/types"
)

// TemplateService is the in-process workout template library. Templates
// are authored as YAML files in a seed directory and loaded at startup;
// lookups never touch disk.
type TemplateService interface {
	Load() error
	Get(slug string) (*types.WorkoutTemplate, bool)
	List() []*types.WorkoutTemplate
}

type templateService struct {
	log *logger.Logger
	dir string

	mu        sync.RWMutex
	templates map[string]*types.WorkoutTemplate
}

func NewTemplateService(baseLog *logger.Logger, dir string) TemplateService {
	return &templateService{
		log:       baseLog.With("service", "TemplateService"),
		dir:       dir,
		templates: make(map[string]*types.WorkoutTemplate),
	}
}

func (s *templateService) Load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read template dir %q: %w", s.dir, err)
	}

	loaded := make(map[string]*types.WorkoutTemplate)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read template %q: %w", path, err)
		}

		var tmpl types.WorkoutTemplate
		if err := yaml.Unmarshal(raw, &tmpl); err != nil {
			return fmt.Errorf("parse template %q: %w", path, err)
		}
		if err := validateTemplate(&tmpl); err != nil {
			return fmt.Errorf("template %q: %w", path, err)
		}
		if _, dup := loaded[tmpl.Slug]; dup {
			return fmt.Errorf("template %q: duplicate slug %q", path, tmpl.Slug)
		}
		loaded[tmpl.Slug] = &tmpl
	}

	s.mu.Lock()
	s.templates = loaded
	s.mu.Unlock()

	s.log.Info("workout templates loaded", "count", len(loaded), "dir", s.dir)
	return nil
}

func (s *templateService) Get(slug string) (*types.WorkoutTemplate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tmpl, ok := s.templates[slug]
	return tmpl, ok
}

func (s *templateService) List() []*types.WorkoutTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.WorkoutTemplate, 0, len(s.templates))
	for _, tmpl := range s.templates {
		out = append(out, tmpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

func validateTemplate(tmpl *types.WorkoutTemplate) error {
	if strings.TrimSpace(tmpl.Slug) == "" {
		return fmt.Errorf("missing slug")
	}
	if len(tmpl.Blocks) == 0 {
		return fmt.Errorf("no blocks")
	}
	for i, b := range tmpl.Blocks {
		if len(b.Exercises) == 0 {
			return fmt.Errorf("block %d has no exercises", i)
		}
		for j, ex := range b.Exercises {
			if strings.TrimSpace(ex.Slug) == "" {
				return fmt.Errorf("block %d exercise %d missing slug", i, j)
			}
		}
	}
	return nil
}
