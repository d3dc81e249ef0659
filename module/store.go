package module

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/status"
)

// ModuleStore is the module-store collaborator from §6: the driver
// resolves an import by asking it for the target module, identified by
// a dotted path. File-system resolution is explicitly this
// collaborator's concern, never the driver's.
type ModuleStore interface {
	HasModule(name string) bool
	GetModule(name string) (*Module, bool)
	ImportModule(name string, importChain []string) (*Module, *status.Status)
	SetModuleCode(name string, code *ast.Module)
}

// MemoryStore is the test-oriented ModuleStore: module ASTs are
// registered directly via SetModuleCode (§6: "for tests"), and
// ImportModule drives the same Analyze entry point the top-level
// caller uses, so an imported module is analyzed exactly once and
// cached by dotted path. Re-entering a module whose analysis is
// already on the stack is rejected as an import cycle (§5).
type MemoryStore struct {
	Env *Environment

	codes     map[string]*ast.Module
	built     map[string]*Module
	analyzing map[string]bool
}

// NewMemoryStore creates a store that analyzes imports against env.
func NewMemoryStore(env *Environment) *MemoryStore {
	return &MemoryStore{
		Env:       env,
		codes:     map[string]*ast.Module{},
		built:     map[string]*Module{},
		analyzing: map[string]bool{},
	}
}

func (s *MemoryStore) SetModuleCode(name string, code *ast.Module) { s.codes[name] = code }

func (s *MemoryStore) HasModule(name string) bool {
	if _, ok := s.codes[name]; ok {
		return true
	}
	_, ok := s.built[name]
	return ok
}

func (s *MemoryStore) GetModule(name string) (*Module, bool) {
	m, ok := s.built[name]
	return m, ok
}

func (s *MemoryStore) ImportModule(name string, importChain []string) (*Module, *status.Status) {
	if m, ok := s.built[name]; ok {
		return m, nil
	}
	if s.analyzing[name] {
		return nil, status.Newf(status.CodeInvalidArgument,
			"import cycle detected: %s re-enters %q", strings.Join(importChain, " -> "), name)
	}
	code, ok := s.codes[name]
	if !ok {
		return nil, status.NotFound("module " + name + " not found")
	}
	s.analyzing[name] = true
	m, st := Analyze(s.Env, name, "", code, importChain)
	delete(s.analyzing, name)
	if st != nil {
		return nil, st
	}
	s.built[name] = m
	return m, nil
}

// FileModuleStore is the default on-disk ModuleStore: it resolves a
// dotted module path to a candidate file under one of SourceRoots,
// validating the match against a "**/*<ext>" doublestar glob so a
// same-named directory is never mistaken for a module file. Turning
// that file's contents into an *ast.Module is the grammar/parser's job
// (§1, explicitly out of scope here), so ImportModule only succeeds for
// a path whose AST was pre-registered via SetModuleCode; otherwise it
// reports the resolved candidate so the caller knows discovery worked
// and only parsing is missing.
type FileModuleStore struct {
	*MemoryStore
	SourceRoots []string
	Ext         string
}

// NewFileModuleStore creates a FileModuleStore searching sourceRoots for
// files named by a dotted module path with the given extension (e.g.
// ".nudl").
func NewFileModuleStore(env *Environment, sourceRoots []string, ext string) *FileModuleStore {
	return &FileModuleStore{MemoryStore: NewMemoryStore(env), SourceRoots: sourceRoots, Ext: ext}
}

// Resolve locates the on-disk file backing dotted module name, if any.
func (s *FileModuleStore) Resolve(name string) (string, bool) {
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator)) + s.Ext
	pattern := "**/*" + s.Ext
	for _, root := range s.SourceRoots {
		candidate := filepath.Join(root, rel)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		relToRoot, err := filepath.Rel(root, candidate)
		if err != nil {
			continue
		}
		if matched, err := doublestar.PathMatch(pattern, filepath.ToSlash(relToRoot)); err == nil && matched {
			return candidate, true
		}
	}
	return "", false
}

func (s *FileModuleStore) ImportModule(name string, importChain []string) (*Module, *status.Status) {
	m, st := s.MemoryStore.ImportModule(name, importChain)
	if st == nil || st.Code != status.CodeNotFound {
		return m, st
	}
	path, ok := s.Resolve(name)
	if !ok {
		return nil, status.NotFound("module " + name + " not found under any source root")
	}
	return nil, status.Newf(status.CodeUnimplemented,
		"module %q resolved to %s but has no registered AST (source parsing is an external collaborator; call SetModuleCode first)",
		name, path)
}

var (
	_ ModuleStore = (*MemoryStore)(nil)
	_ ModuleStore = (*FileModuleStore)(nil)
)
