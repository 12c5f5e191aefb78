package curriculum

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// ErrDuplicateChapter is returned for a document whose id or number is already taken.
var ErrDuplicateChapter = errors.New("duplicate chapter")

// DocumentError records a document that was left out of the catalog.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Catalog loads chapters from a Source and caches them until ReloadChapters.
//
// The chapter list is published as an immutable snapshot: readers never take a
// lock and always see a fully built list. Concurrent cold reads share a single build.
type Catalog struct {
	source Source
	parser Parser
	log    *slog.Logger

	snap  atomic.Pointer[snapshot]
	group singleflight.Group

	mu  sync.Mutex // guards gen and snapshot publication
	gen uint64
}

type snapshot struct {
	chapters []Chapter
	byID     map[int]int
	skipped  []*DocumentError
}

// NewCatalog creates a catalog. Nothing is loaded until the first read.
func NewCatalog(source Source, parser Parser, log *slog.Logger) *Catalog {
	if parser == nil {
		parser = &MarkdownParser{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{
		source: source,
		parser: parser,
		log:    log,
	}
}

// GetAllChapters returns all chapters ordered by Number.
// The returned slice is shared and must not be modified.
func (c *Catalog) GetAllChapters() []Chapter {
	return c.load().chapters
}

// GetChapter returns a chapter by ID.
func (c *Catalog) GetChapter(id int) (Chapter, bool) {
	s := c.load()
	i, ok := s.byID[id]
	if !ok {
		return Chapter{}, false
	}
	return s.chapters[i], true
}

// GetChaptersByCategory groups chapters by category, keeping chapter order within each group.
func (c *Catalog) GetChaptersByCategory() map[Category][]Chapter {
	return lo.GroupBy(c.GetAllChapters(), func(ch Chapter) Category {
		return ch.Category
	})
}

// Skipped returns the documents excluded from the current chapter list.
func (c *Catalog) Skipped() []*DocumentError {
	return c.load().skipped
}

// ReloadChapters drops the cached list; the next read rebuilds it from the source.
func (c *Catalog) ReloadChapters() {
	c.mu.Lock()
	c.gen++
	c.snap.Store(nil)
	c.mu.Unlock()
	c.log.Info("chapter cache invalidated")
}

func (c *Catalog) load() *snapshot {
	if s := c.snap.Load(); s != nil {
		return s
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	v, _, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		if s := c.snap.Load(); s != nil {
			return s, nil
		}
		s := c.build()

		c.mu.Lock()
		if c.gen == gen {
			c.snap.Store(s)
		}
		c.mu.Unlock()
		return s, nil
	})
	return v.(*snapshot)
}

func (c *Catalog) build() *snapshot {
	s := &snapshot{
		chapters: []Chapter{},
		byID:     make(map[int]int),
	}

	names, err := c.source.List()
	if err != nil {
		c.log.Warn("listing chapter documents failed, catalog is empty", "error", err)
		return s
	}

	skip := func(name string, err error) {
		c.log.Warn("skipping chapter document", "path", name, "error", err)
		s.skipped = append(s.skipped, &DocumentError{Path: name, Err: err})
	}

	idOwner := make(map[int]string)
	numberOwner := make(map[int]string)
	for _, name := range names {
		data, err := c.source.Read(name)
		if err != nil {
			skip(name, fmt.Errorf("reading document: %w", err))
			continue
		}

		ch, err := c.parser.Parse(string(data))
		if err != nil {
			skip(name, fmt.Errorf("parsing document: %w", err))
			continue
		}

		if owner, taken := idOwner[ch.ID]; taken {
			skip(name, fmt.Errorf("%w: id %d already defined by %s", ErrDuplicateChapter, ch.ID, owner))
			continue
		}
		if owner, taken := numberOwner[ch.Number]; taken {
			skip(name, fmt.Errorf("%w: number %d already defined by %s", ErrDuplicateChapter, ch.Number, owner))
			continue
		}
		idOwner[ch.ID] = name
		numberOwner[ch.Number] = name

		s.chapters = append(s.chapters, ch)
	}

	slices.SortStableFunc(s.chapters, func(a, b Chapter) int {
		return cmp.Compare(a.Number, b.Number)
	})
	for i, ch := range s.chapters {
		s.byID[ch.ID] = i
	}

	c.log.Info("chapters loaded", "chapters", len(s.chapters), "skipped", len(s.skipped))
	return s
}
