package importer

import "strconv"

// RunState is the single-owner mutable state of one invocation. It is
// created by Run, threaded through the parser, resource store, task
// collector and link resolver, and discarded when the run ends. Execution
// is single-threaded, so no locking; the ordering discipline (the link
// pass starts only after every archive finished) is what keeps it sound.
type RunState struct {
	links       []*LinkRequest
	outputs     []OutputRecord
	usedNames   map[string]map[string]int
	clearedDirs map[string]int
	embedIndex  map[string]int
	tasks       *TaskCollector

	// currentNotePath is the file most recently written, the anchor for
	// relative references produced while that note is being finished.
	currentNotePath string

	stats Stats
}

// OutputRecord describes one destination file produced for a note.
type OutputRecord struct {
	Path     string
	Notebook string
	Base     string // sanitized, truncated title without the suffix
	Suffix   string // disambiguation suffix, empty unless a collision occurred
}

// Stats are the aggregate counts reported at the end of a run.
type Stats struct {
	Archives        int
	Notes           int
	Resources       int
	Tasks           int
	Skipped         int
	Failed          int
	FailedArchives  int
	ResolvedLinks   int
	UnresolvedLinks int
}

func newRunState(taskTag string) *RunState {
	return &RunState{
		usedNames:   map[string]map[string]int{},
		clearedDirs: map[string]int{},
		embedIndex:  map[string]int{},
		tasks:       newTaskCollector(taskTag),
	}
}

// reserveName claims a unique file base name within dir. The first note
// with a given name keeps it; later ones get a numeric suffix, matching
// the rule the resolver re-derives.
func (rs *RunState) reserveName(dir string, base string) (string, string) {
	byKey := rs.usedNames[dir]
	if byKey == nil {
		byKey = map[string]int{}
		rs.usedNames[dir] = byKey
	}
	key := collisionKey(base)
	n := byKey[key]
	byKey[key] = n + 1
	if n == 0 {
		return base, ""
	}
	suffix := "-" + strconv.Itoa(n+1)
	return base + suffix, suffix
}

// clearDirOnce guards destructive resource-directory clears: a directory
// shared by several notes (or the whole run) is wiped at most once.
func (rs *RunState) clearDirOnce(dir string) bool {
	n := rs.clearedDirs[dir]
	rs.clearedDirs[dir] = n + 1
	return n == 0
}

// nextEmbedIndex returns the directory-scoped counter used to name
// extracted inline data files.
func (rs *RunState) nextEmbedIndex(dir string) int {
	n := rs.embedIndex[dir]
	rs.embedIndex[dir] = n + 1
	return n
}
