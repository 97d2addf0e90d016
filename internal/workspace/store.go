// Package workspace owns project persistence: the sqlite cache tier, the
// durable human-readable text tier, the legacy consolidated blob, and the
// tiered load/migrate/save logic that keeps them consistent.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harrison/gather/internal/config"
	"github.com/harrison/gather/internal/filelock"
	"github.com/harrison/gather/internal/logger"
	"github.com/harrison/gather/internal/models"
)

var (
	// ErrProjectExists is returned by Create for an already-provisioned name.
	ErrProjectExists = errors.New("project already exists")

	// ErrProjectNotFound is returned by Load when no tier knows the name
	// and no workspace directory exists for it.
	ErrProjectNotFound = errors.New("project not found")
)

// documentName is the durable-tier file inside each project directory.
const documentName = "structure.txt"

// instructionsName holds the optional free-text instructions.
const instructionsName = "instructions.md"

// Store manages every project workspace under one gather home.
type Store struct {
	home  string
	cache *Cache
	log   *logger.ConsoleLogger
}

// NewStore opens the store for a gather home. The cache database is opened
// eagerly; call Close when done.
func NewStore(home string, log *logger.ConsoleLogger) (*Store, error) {
	if log == nil {
		log = logger.New(nil, "info")
	}
	cache, err := OpenCache(config.CacheDBPath(home))
	if err != nil {
		return nil, fmt.Errorf("open cache tier: %w", err)
	}
	return &Store{home: home, cache: cache, log: log}, nil
}

// Close releases the cache database.
func (s *Store) Close() error {
	return s.cache.Close()
}

// ProjectDir returns the workspace directory for a project.
func (s *Store) ProjectDir(name string) string {
	return config.ProjectDir(s.home, name)
}

// DocumentPath returns the durable-tier document path for a project.
func (s *Store) DocumentPath(name string) string {
	return filepath.Join(s.ProjectDir(name), documentName)
}

// InstructionsPath returns the instructions file path for a project.
func (s *Store) InstructionsPath(name string) string {
	return filepath.Join(s.ProjectDir(name), instructionsName)
}

// Exists reports whether a project is known to any tier or has a
// provisioned workspace directory.
func (s *Store) Exists(name string) bool {
	if cached, err := s.cache.HasProject(name); err == nil && cached {
		return true
	}
	if info, err := os.Stat(s.ProjectDir(name)); err == nil && info.IsDir() {
		return true
	}
	return false
}

// Create provisions an empty project: workspace directory plus persisted
// empty record set.
func (s *Store) Create(name string, now time.Time) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	if s.Exists(name) {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, name)
	}

	if err := os.MkdirAll(s.ProjectDir(name), 0755); err != nil {
		return nil, fmt.Errorf("provision workspace directory: %w", err)
	}

	p := models.NewProject(name, now)
	if err := s.persistTiers(p); err != nil {
		return nil, err
	}
	return p, nil
}

// tierLoader is one named entry of the prioritized load chain.
type tierLoader struct {
	name string
	load func(name string) (*models.Project, bool, error)
}

func (s *Store) loaders() []tierLoader {
	return []tierLoader{
		{"cache", s.loadFromCache},
		{"document", s.loadFromDocument},
		{"legacy", s.loadFromLegacy},
	}
}

// Load reconstructs a project, trying each tier in priority order. A
// successful load from a lower tier writes the project back to the higher
// tiers so the next load takes the fast path. Tier failures are soft: a
// broken cache or unparseable document logs a warning and falls through.
func (s *Store) Load(name string) (*models.Project, error) {
	for i, tier := range s.loaders() {
		p, ok, err := tier.load(name)
		if err != nil {
			s.log.Warnf("%s tier failed for %s, falling back: %v", tier.name, name, err)
			continue
		}
		if !ok {
			continue
		}

		p.Name = name
		if p.CreatedAt == "" {
			// The document and oldest legacy records carry no creation
			// time; the best available stand-in is the last update.
			p.CreatedAt = p.LastUpdated
		}
		s.attachInstructions(p)
		p.SetDirectoryStructure(RenderStructure(p))

		if i > 0 {
			s.log.Infof("migrating project %s forward from %s tier", name, tier.name)
			if err := s.persistTiers(p); err != nil {
				// Migration is best-effort; the load itself succeeded.
				s.log.Warnf("write-back migration failed for %s: %v", name, err)
			}
		}
		return p, nil
	}

	// No tier knows the project. A provisioned directory without metadata
	// recovers as an empty project; anything else is not found.
	if info, err := os.Stat(s.ProjectDir(name)); err == nil && info.IsDir() {
		p := models.NewProject(name, time.Now())
		s.attachInstructions(p)
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
}

func (s *Store) loadFromCache(name string) (*models.Project, bool, error) {
	return s.cache.LoadProject(name)
}

func (s *Store) loadFromDocument(name string) (*models.Project, bool, error) {
	data, err := os.ReadFile(s.DocumentPath(name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read document: %w", err)
	}
	return ParseDocument(string(data)), true, nil
}

func (s *Store) loadFromLegacy(name string) (*models.Project, bool, error) {
	return LoadLegacyProject(config.LegacyBlobPath(s.home), name)
}

func (s *Store) attachInstructions(p *models.Project) {
	data, err := os.ReadFile(s.InstructionsPath(p.Name))
	if err == nil {
		p.Instructions = string(data)
	}
}

// Save commits a project: refresh LastUpdated, regenerate the derived
// structure rendering, then write the durable tier first and the cache tier
// second. Ordering matters: if the cache write fails after a successful
// document write, the project is still recoverable from the document on the
// next load.
func (s *Store) Save(p *models.Project, now time.Time) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}
	p.Touch(now)
	return s.persistTiers(p)
}

// persistTiers writes both tiers plus instructions without touching
// LastUpdated. Shared by Save and write-back migration.
func (s *Store) persistTiers(p *models.Project) error {
	p.SetDirectoryStructure(RenderStructure(p))

	doc := RenderDocument(p)
	if err := filelock.AtomicWrite(s.DocumentPath(p.Name), []byte(doc)); err != nil {
		return fmt.Errorf("write durable tier: %w", err)
	}

	if err := s.cache.SaveProject(p); err != nil {
		return fmt.Errorf("write cache tier: %w", err)
	}

	if p.Instructions != "" {
		if err := filelock.AtomicWrite(s.InstructionsPath(p.Name), []byte(p.Instructions)); err != nil {
			return fmt.Errorf("write instructions: %w", err)
		}
	}
	return nil
}

// List returns summaries for every known project, preferring the cache and
// falling back to a directory listing when the cache is unavailable.
func (s *Store) List() ([]ProjectSummary, error) {
	summaries, err := s.cache.ListProjects()
	if err == nil {
		return summaries, nil
	}
	s.log.Warnf("cache listing failed, scanning project directories: %v", err)

	projectsDir, err := config.ProjectsDir(s.home)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("read projects directory: %w", err)
	}
	var out []ProjectSummary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, ProjectSummary{
			Name:        p.Name,
			LastUpdated: p.LastUpdated,
			FileCount:   len(p.Files),
		})
	}
	return out, nil
}
