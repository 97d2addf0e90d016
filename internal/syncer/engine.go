package syncer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/gather/internal/fileutil"
	"github.com/harrison/gather/internal/filter"
	"github.com/harrison/gather/internal/logger"
	"github.com/harrison/gather/internal/models"
	"github.com/harrison/gather/internal/scanner"
	"github.com/harrison/gather/internal/workspace"
)

// Policy selects which update strategy a pass runs.
type Policy string

const (
	// PolicyFull rescans every registered source directory and proposes
	// copying everything new or modified.
	PolicyFull Policy = "full"

	// PolicyRefresh re-stats only the already-recorded files and proposes
	// copying the modified ones.
	PolicyRefresh Policy = "refresh"

	// PolicySelective classifies like refresh but lets the caller choose
	// the subset to act on.
	PolicySelective Policy = "selective"
)

// State is the phase of one synchronization pass.
type State string

const (
	StateIdle                 State = "idle"
	StateScanning             State = "scanning"
	StateClassified           State = "classified"
	StateAwaitingConfirmation State = "awaiting-confirmation"
	StateCopying              State = "copying"
	StatePersisted            State = "persisted"
	StateAborted              State = "aborted"
)

// PickEntry is one row of the selective-update pick list.
type PickEntry struct {
	Key    string
	Status models.FileStatus
}

// Options carries the caller-supplied hooks for one pass. A nil Confirm
// auto-confirms; a nil Pick selects nothing.
type Options struct {
	// Confirm is called once the change set is classified and before any
	// copy happens. Returning false aborts the pass cleanly.
	Confirm func(*models.ChangeSet) bool

	// Pick chooses the subset to act on during a selective pass.
	Pick func(entries []PickEntry) []string

	// Disambiguate enables stable hash suffixes for flattened-name
	// collisions instead of the overwrite-last-wins legacy behavior.
	Disambiguate bool
}

// Result reports one finished (or aborted) pass.
type Result struct {
	PassID  string
	State   State
	Changes *models.ChangeSet

	Copied         []string
	Failed         []string
	SkippedMissing []string
	Warnings       []string

	// FallbackSuggested is set by a refresh pass that found nothing
	// modified; the caller may rerun with PolicyFull.
	FallbackSuggested bool

	Saved bool
}

// Engine orchestrates scanning, classification, copying, and persistence
// for one project at a time. Passes run sequentially; there is no locking
// here because the CLI holds the workspace lock for the whole invocation.
type Engine struct {
	store *workspace.Store
	log   *logger.ConsoleLogger
}

// New creates an engine over the given store.
func New(store *workspace.Store, log *logger.ConsoleLogger) *Engine {
	if log == nil {
		log = logger.New(nil, "info")
	}
	return &Engine{store: store, log: log}
}

func newResult() *Result {
	return &Result{
		PassID: uuid.NewString(),
		State:  StateIdle,
	}
}

// passTag returns the short pass id used to correlate log lines.
func (r *Result) passTag() string {
	if len(r.PassID) >= 8 {
		return r.PassID[:8]
	}
	return r.PassID
}

// Collect performs first-time collection (or augmentation) from explicit
// roots: scan, classify against whatever the project already holds, copy
// new and modified files, register directory roots, persist.
func (e *Engine) Collect(p *models.Project, roots []scanner.Root, f *filter.PathFilter, opts Options) (*Result, error) {
	res := newResult()
	e.log.Infof("pass %s: collecting %d root(s) into project %s", res.passTag(), len(roots), p.Name)

	res.State = StateScanning
	candidates, err := e.scanRoots(roots, f, res)
	if err != nil {
		return nil, err
	}

	res.Changes = Classify(p.Files, candidates)
	res.State = StateClassified

	if !res.Changes.Actionable() {
		e.log.Infof("pass %s: nothing to collect", res.passTag())
		res.State = StateAborted
		return res, nil
	}

	res.State = StateAwaitingConfirmation
	if opts.Confirm != nil && !opts.Confirm(res.Changes) {
		e.log.Infof("pass %s: declined, no files copied", res.passTag())
		res.State = StateAborted
		return res, nil
	}

	res.State = StateCopying
	e.copyKeys(p, append(append([]string{}, res.Changes.New...), res.Changes.Modified...), candidates, opts.Disambiguate, res)

	for _, root := range roots {
		if root.Kind != scanner.RootDirectory {
			continue
		}
		abs, err := filepath.Abs(root.Path)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("resolve %s: %v", root.Path, err))
			continue
		}
		p.AddSourceDirectory(abs)
	}

	return e.persist(p, res)
}

// Update runs one synchronization pass under the given policy.
func (e *Engine) Update(p *models.Project, policy Policy, f *filter.PathFilter, opts Options) (*Result, error) {
	switch policy {
	case PolicyFull:
		return e.updateFull(p, f, opts)
	case PolicyRefresh:
		return e.updateRefresh(p, opts)
	case PolicySelective:
		return e.updateSelective(p, opts)
	}
	return nil, fmt.Errorf("unknown update policy %q", policy)
}

func (e *Engine) updateFull(p *models.Project, f *filter.PathFilter, opts Options) (*Result, error) {
	res := newResult()
	e.log.Infof("pass %s: full sync of project %s (%d source dirs)", res.passTag(), p.Name, len(p.SourceDirectories))

	res.State = StateScanning
	var roots []scanner.Root
	for _, dir := range p.SourceDirectories {
		root, err := scanner.StatRoot(dir)
		if err != nil {
			// A registered directory may have vanished since collection;
			// its files classify as missing below.
			msg := fmt.Sprintf("source directory unavailable: %v", err)
			res.Warnings = append(res.Warnings, msg)
			e.log.Warnf("pass %s: %s", res.passTag(), msg)
			continue
		}
		roots = append(roots, root)
	}

	candidates, err := e.scanRoots(roots, f, res)
	if err != nil {
		return nil, err
	}

	res.Changes = Classify(p.Files, candidates)
	res.State = StateClassified
	e.logChanges(res)

	if !res.Changes.Actionable() {
		res.State = StateAborted
		return res, nil
	}

	res.State = StateAwaitingConfirmation
	if opts.Confirm != nil && !opts.Confirm(res.Changes) {
		res.State = StateAborted
		return res, nil
	}

	res.State = StateCopying
	e.copyKeys(p, append(append([]string{}, res.Changes.New...), res.Changes.Modified...), candidates, opts.Disambiguate, res)

	return e.persist(p, res)
}

func (e *Engine) updateRefresh(p *models.Project, opts Options) (*Result, error) {
	res := newResult()
	e.log.Infof("pass %s: refreshing %d recorded file(s) in project %s", res.passTag(), len(p.Files), p.Name)

	res.State = StateScanning
	candidates := e.restatRecords(p, res)

	res.Changes = Classify(p.Files, candidates)
	res.State = StateClassified
	e.logChanges(res)

	if len(res.Changes.Modified) == 0 {
		res.FallbackSuggested = true
		res.State = StateAborted
		return res, nil
	}

	res.State = StateAwaitingConfirmation
	if opts.Confirm != nil && !opts.Confirm(res.Changes) {
		res.State = StateAborted
		return res, nil
	}

	res.State = StateCopying
	e.copyKeys(p, res.Changes.Modified, candidates, opts.Disambiguate, res)

	return e.persist(p, res)
}

func (e *Engine) updateSelective(p *models.Project, opts Options) (*Result, error) {
	res := newResult()
	e.log.Infof("pass %s: selective sync of project %s", res.passTag(), p.Name)

	res.State = StateScanning
	candidates := e.restatRecords(p, res)

	res.Changes = Classify(p.Files, candidates)
	res.State = StateClassified
	e.logChanges(res)

	entries := make([]PickEntry, 0, len(res.Changes.Modified)+len(res.Changes.Missing))
	for _, key := range res.Changes.Modified {
		entries = append(entries, PickEntry{Key: key, Status: models.StatusModified})
	}
	for _, key := range res.Changes.Missing {
		entries = append(entries, PickEntry{Key: key, Status: models.StatusMissing})
	}
	if len(entries) == 0 {
		res.State = StateAborted
		return res, nil
	}

	res.State = StateAwaitingConfirmation
	var chosen []string
	if opts.Pick != nil {
		chosen = opts.Pick(entries)
	}
	if len(chosen) == 0 {
		e.log.Infof("pass %s: nothing selected", res.passTag())
		res.State = StateAborted
		return res, nil
	}

	missing := make(map[string]bool, len(res.Changes.Missing))
	for _, key := range res.Changes.Missing {
		missing[key] = true
	}
	modified := make(map[string]bool, len(res.Changes.Modified))
	for _, key := range res.Changes.Modified {
		modified[key] = true
	}

	res.State = StateCopying
	var toCopy []string
	for _, key := range chosen {
		switch {
		case missing[key]:
			// Cannot copy a file that no longer exists.
			res.SkippedMissing = append(res.SkippedMissing, key)
			e.log.Warnf("pass %s: skipping missing source %s", res.passTag(), key)
		case modified[key]:
			toCopy = append(toCopy, key)
		default:
			res.Warnings = append(res.Warnings, fmt.Sprintf("selection %s is not actionable", key))
		}
	}
	e.copyKeys(p, toCopy, candidates, opts.Disambiguate, res)

	return e.persist(p, res)
}

// scanRoots walks the roots and stats every emitted file into a candidate
// map keyed by absolute path. Stat failures are per-file warnings.
func (e *Engine) scanRoots(roots []scanner.Root, f *filter.PathFilter, res *Result) (map[string]models.Candidate, error) {
	scanRes, err := scanner.Scan(roots, f)
	if err != nil {
		return nil, fmt.Errorf("scan roots: %w", err)
	}
	for _, warning := range scanRes.Warnings {
		res.Warnings = append(res.Warnings, warning)
		e.log.Warnf("pass %s: %s", res.passTag(), warning)
	}

	candidates := make(map[string]models.Candidate, len(scanRes.Files))
	for _, sf := range scanRes.Files {
		info, err := fileutil.Stat(sf.AbsolutePath)
		if err != nil {
			msg := fmt.Sprintf("stat %s: %v", sf.AbsolutePath, err)
			res.Warnings = append(res.Warnings, msg)
			e.log.Warnf("pass %s: %s", res.passTag(), msg)
			continue
		}
		candidates[sf.AbsolutePath] = models.Candidate{
			AbsolutePath: sf.AbsolutePath,
			RelativePath: sf.RelativePath,
			Size:         info.Size,
			ModTime:      info.ModTime,
		}
	}
	return candidates, nil
}

// restatRecords builds candidates by re-statting each recorded original.
// Records whose source is gone simply produce no candidate and classify as
// missing.
func (e *Engine) restatRecords(p *models.Project, res *Result) map[string]models.Candidate {
	candidates := make(map[string]models.Candidate, len(p.Files))
	for key, rec := range p.Files {
		info, err := fileutil.Stat(key)
		if err != nil {
			continue
		}
		candidates[key] = models.Candidate{
			AbsolutePath: key,
			RelativePath: rec.OriginalPath,
			Size:         info.Size,
			ModTime:      info.ModTime,
		}
	}
	return candidates
}

// copyKeys copies each key's source into the workspace. New keys get fresh
// records; keys with an existing record keep their storage name and have
// size/mtime updated in place. Per-file failures are logged and skipped;
// the batch always runs to completion.
func (e *Engine) copyKeys(p *models.Project, keys []string, candidates map[string]models.Candidate, disambiguate bool, res *Result) {
	projectDir := e.store.ProjectDir(p.Name)

	// Storage names already claimed by other records, for collision checks.
	claimed := make(map[string]string, len(p.Files))
	for key, rec := range p.Files {
		claimed[rec.NewPath] = key
	}

	for _, key := range keys {
		cand, ok := candidates[key]
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("no candidate for %s", key))
			continue
		}

		rec, known := p.Files[key]
		newPath := ""
		if known {
			newPath = rec.NewPath
		} else {
			newPath = scanner.Flatten(cand.RelativePath)
			if owner, taken := claimed[newPath]; taken && owner != key {
				if disambiguate {
					newPath = scanner.Disambiguate(newPath, key)
					e.log.Infof("pass %s: storage name collision, using %s for %s", res.passTag(), newPath, key)
				} else {
					e.log.Warnf("pass %s: %s and %s both flatten to %s; the later copy wins", res.passTag(), owner, key, newPath)
				}
			}
		}

		dest := filepath.Join(projectDir, newPath)
		if err := fileutil.CopyFile(key, dest); err != nil {
			msg := fmt.Sprintf("copy %s: %v", key, err)
			res.Failed = append(res.Failed, key)
			res.Warnings = append(res.Warnings, msg)
			e.log.Errorf("pass %s: %s", res.passTag(), msg)
			continue
		}

		mtime := cand.ModTime.Format(models.MtimeLayout)
		if known {
			rec.Size = cand.Size
			rec.Mtime = mtime
		} else {
			p.AddFiles([]*models.FileRecord{{
				OriginalPath:      cand.RelativePath,
				FullOriginalPath:  key,
				NewPath:           newPath,
				OriginalDirectory: filepath.Dir(key),
				Size:              cand.Size,
				Mtime:             mtime,
			}})
			claimed[newPath] = key
		}
		res.Copied = append(res.Copied, key)
	}
}

// persist runs the single save that ends every non-aborted pass.
func (e *Engine) persist(p *models.Project, res *Result) (*Result, error) {
	if err := e.store.Save(p, time.Now()); err != nil {
		return res, fmt.Errorf("persist project %s: %w", p.Name, err)
	}
	res.Saved = true
	res.State = StatePersisted
	e.log.Infof("pass %s: persisted %s (%d copied, %d failed)", res.passTag(), p.Name, len(res.Copied), len(res.Failed))
	return res, nil
}

func (e *Engine) logChanges(res *Result) {
	c := res.Changes
	e.log.Infof("pass %s: %d new, %d modified, %d unchanged, %d missing",
		res.passTag(), len(c.New), len(c.Modified), len(c.Unchanged), len(c.Missing))
}
