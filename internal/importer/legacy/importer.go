package legacy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/storage"
)

// Store is the persistence an import writes to.
type Store interface {
	storage.ProfileStore
	storage.ChannelStore
}

// Summary counts what an import wrote.
type Summary struct {
	Channels int
	Profiles int
	// Skipped counts profiles that already existed and were left untouched.
	Skipped int
	Entries int
	// UnknownKeys counts sheet keys that match no characteristic or skill.
	UnknownKeys int
}

// Importer writes legacy documents into a Store.
type Importer struct {
	store  Store
	prefix string
	logger *zap.Logger
}

// New creates an Importer. prefix is prepended to every legacy owner and
// channel id, e.g. "discord:".
//
// Precondition: store and logger must be non-nil.
func New(store Store, prefix string, logger *zap.Logger) *Importer {
	return &Importer{store: store, prefix: prefix, logger: logger}
}

// Run imports doc. Fast channels are enabled, then every profile that does
// not already exist is created with its sheet. A profile listed as its
// owner's active profile is switched to.
//
// Postcondition: Returns the counts written so far and a non-nil error if a
// store operation failed.
func (imp *Importer) Run(ctx context.Context, doc *Document) (Summary, error) {
	start := time.Now()
	var sum Summary

	channels := slices.Clone(doc.FastChannels)
	sort.Strings(channels)
	for _, ch := range slices.Compact(channels) {
		id := imp.prefix + ch
		fast, err := imp.store.IsFast(ctx, id)
		if err != nil {
			return sum, fmt.Errorf("checking channel %s: %w", id, err)
		}
		if !fast {
			if _, err := imp.store.ToggleFast(ctx, id); err != nil {
				return sum, fmt.Errorf("enabling fast mode on %s: %w", id, err)
			}
		}
		sum.Channels++
	}

	names := make([]string, 0, len(doc.Profiles))
	for name := range doc.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := imp.importProfile(ctx, doc, name, &sum); err != nil {
			return sum, err
		}
	}

	imp.logger.Info("legacy import complete",
		zap.Int("channels", sum.Channels),
		zap.Int("profiles", sum.Profiles),
		zap.Int("skipped", sum.Skipped),
		zap.Int("entries", sum.Entries),
		zap.Int("unknown_keys", sum.UnknownKeys),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return sum, nil
}

func (imp *Importer) importProfile(ctx context.Context, doc *Document, name string, sum *Summary) error {
	p := doc.Profiles[name]
	owner := imp.prefix + p.Owner

	_, err := imp.store.CreateProfile(ctx, owner, name, "")
	if errors.Is(err, storage.ErrProfileExists) {
		imp.logger.Info("profile exists, skipping", zap.String("owner", owner), zap.String("profile", name))
		sum.Skipped++
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating profile %s for %s: %w", name, owner, err)
	}
	sum.Profiles++

	raws := make([]string, 0, len(p.Sheet))
	for raw := range p.Sheet {
		raws = append(raws, raw)
	}
	sort.Strings(raws)
	for _, raw := range raws {
		k, ok := decodeKey(raw)
		if !ok {
			imp.logger.Warn("unknown sheet key", zap.String("profile", name), zap.String("key", raw))
			sum.UnknownKeys++
			continue
		}
		if _, err := imp.store.SetEntry(ctx, owner, name, k, p.Sheet[raw]); err != nil {
			return fmt.Errorf("setting %s on %s: %w", k, name, err)
		}
		sum.Entries++
	}

	if u, ok := doc.Users[p.Owner]; ok && storage.NormalizeName(u.Profile) == storage.NormalizeName(name) {
		if _, err := imp.store.SwitchProfile(ctx, owner, name); err != nil {
			return fmt.Errorf("switching %s to %s: %w", owner, name, err)
		}
	}
	return nil
}
