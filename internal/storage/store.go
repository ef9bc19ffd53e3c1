package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tatianab/orb-cult/internal/models"
)

// Store is the progression store.
type Store struct {
	backend Backend
	locks   *keyLocks
	log     *slog.Logger
}

// New returns a store over backend. A nil logger discards logs.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{backend: backend, locks: newKeyLocks(), log: logger}
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Atomically runs fn with the given keys locked. Reads inside fn see the
// durable state; writes are buffered and flushed only if fn returns nil.
// Keys are always acquired in the same order, so overlapping calls
// serialize without deadlock.
func (s *Store) Atomically(ctx context.Context, keys []LockKey, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sorted, unlock := s.locks.lockAll(keys)
	defer unlock()

	tx := newTx(ctx, s, sorted)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// Cultist returns the profile for id, creating and persisting a default
// record if none exists.
func (s *Store) Cultist(ctx context.Context, id string) (*models.CultistProfile, error) {
	var out *models.CultistProfile
	err := s.Atomically(ctx, []LockKey{UserKey(id)}, func(tx *Tx) error {
		p, err := tx.Cultist(id)
		if err != nil {
			return err
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

// MergeCultist applies patch to the profile for id and returns the result.
func (s *Store) MergeCultist(ctx context.Context, id string, patch CultistPatch) (*models.CultistProfile, error) {
	var out *models.CultistProfile
	err := s.Atomically(ctx, []LockKey{UserKey(id)}, func(tx *Tx) error {
		p, err := tx.Cultist(id)
		if err != nil {
			return err
		}
		patch.Apply(p)
		out = p.Clone()
		return nil
	})
	return out, err
}

// Server returns the server profile for id, creating it if absent.
func (s *Store) Server(ctx context.Context, id string) (*models.ServerProfile, error) {
	var out *models.ServerProfile
	err := s.Atomically(ctx, []LockKey{ServerKey(id)}, func(tx *Tx) error {
		sp, err := tx.Server(id)
		if err != nil {
			return err
		}
		out = sp.Clone()
		return nil
	})
	return out, err
}

// MergeServer applies patch to the server profile for id.
func (s *Store) MergeServer(ctx context.Context, id string, patch ServerPatch) (*models.ServerProfile, error) {
	var out *models.ServerProfile
	err := s.Atomically(ctx, []LockKey{ServerKey(id)}, func(tx *Tx) error {
		sp, err := tx.Server(id)
		if err != nil {
			return err
		}
		patch.Apply(sp)
		out = sp.Clone()
		return nil
	})
	return out, err
}

// Session returns the live adventure session for a user, or nil.
func (s *Store) Session(ctx context.Context, userID string) (*models.AdventureSession, error) {
	var out *models.AdventureSession
	err := s.Atomically(ctx, []LockKey{UserKey(userID)}, func(tx *Tx) error {
		sess, err := tx.Session(userID)
		if sess != nil {
			c := *sess
			out = &c
		}
		return err
	})
	return out, err
}

func unavailable(op, keyspace, id string, err error) error {
	return fmt.Errorf("%w: %s %s/%s: %w", ErrStorageUnavailable, op, keyspace, id, err)
}

// load fetches and decodes a record. A record that fails to decode is
// restored from backup once, when the backend supports it.
func load[T any](ctx context.Context, s *Store, keyspace, id string, decode func(string, []byte) (T, error)) (rec T, found bool, err error) {
	data, err := s.backend.Load(ctx, keyspace, id)
	if errors.Is(err, ErrNotFound) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, unavailable("load", keyspace, id, err)
	}
	rec, decErr := decode(id, data)
	if decErr == nil {
		return rec, true, nil
	}

	r, ok := s.backend.(Restorer)
	if !ok {
		return rec, false, unavailable("decode", keyspace, id, decErr)
	}
	s.log.Warn("corrupt record, restoring from backup", "keyspace", keyspace, "id", id, "error", decErr)
	if err := r.Restore(ctx, keyspace, id); err != nil {
		return rec, false, unavailable("restore", keyspace, id, errors.Join(decErr, err))
	}
	data, err = s.backend.Load(ctx, keyspace, id)
	if err != nil {
		return rec, false, unavailable("load", keyspace, id, err)
	}
	rec, decErr = decode(id, data)
	if decErr != nil {
		return rec, false, unavailable("decode", keyspace, id, decErr)
	}
	return rec, true, nil
}

type cultistEntry struct {
	rec  *models.CultistProfile
	orig []byte
}

type serverEntry struct {
	rec  *models.ServerProfile
	orig []byte
}

type sessionEntry struct {
	rec     *models.AdventureSession
	orig    []byte
	deleted bool
}

// Tx is a set of records read and written under the locks of one
// Atomically call. Records returned by Tx may be mutated in place; changes
// are persisted when the transaction commits.
type Tx struct {
	ctx      context.Context
	s        *Store
	keys     []LockKey
	cultists map[string]*cultistEntry
	servers  map[string]*serverEntry
	sessions map[string]*sessionEntry
}

func newTx(ctx context.Context, s *Store, keys []LockKey) *Tx {
	return &Tx{
		ctx:      ctx,
		s:        s,
		keys:     keys,
		cultists: make(map[string]*cultistEntry),
		servers:  make(map[string]*serverEntry),
		sessions: make(map[string]*sessionEntry),
	}
}

func (tx *Tx) holds(key LockKey) error {
	if _, ok := slices.BinarySearch(tx.keys, key); !ok {
		return fmt.Errorf("%w: %s", ErrNotLocked, key)
	}
	return nil
}

func validID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("storage: id is required")
	}
	return nil
}

// Cultist returns the profile for id, creating a default one if absent.
func (tx *Tx) Cultist(id string) (*models.CultistProfile, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := tx.holds(UserKey(id)); err != nil {
		return nil, err
	}
	if e, ok := tx.cultists[id]; ok {
		return e.rec, nil
	}
	p, found, err := load(tx.ctx, tx.s, KeyspaceCultists, id, models.DecodeCultist)
	if err != nil {
		return nil, err
	}
	e := &cultistEntry{rec: p}
	if found {
		if e.orig, err = models.EncodeCultist(p); err != nil {
			return nil, unavailable("encode", KeyspaceCultists, id, err)
		}
	} else {
		e.rec = models.NewCultistProfile(id)
	}
	tx.cultists[id] = e
	return e.rec, nil
}

// Server returns the server profile for id, creating a default one if absent.
func (tx *Tx) Server(id string) (*models.ServerProfile, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := tx.holds(ServerKey(id)); err != nil {
		return nil, err
	}
	if e, ok := tx.servers[id]; ok {
		return e.rec, nil
	}
	sp, found, err := load(tx.ctx, tx.s, KeyspaceServers, id, models.DecodeServer)
	if err != nil {
		return nil, err
	}
	e := &serverEntry{rec: sp}
	if found {
		if e.orig, err = models.EncodeServer(sp); err != nil {
			return nil, unavailable("encode", KeyspaceServers, id, err)
		}
	} else {
		e.rec = models.NewServerProfile(id)
	}
	tx.servers[id] = e
	return e.rec, nil
}

// Session returns the user's live session, or nil when there is none.
func (tx *Tx) Session(userID string) (*models.AdventureSession, error) {
	e, err := tx.session(userID)
	if err != nil || e.deleted {
		return nil, err
	}
	return e.rec, nil
}

func (tx *Tx) session(userID string) (*sessionEntry, error) {
	if err := validID(userID); err != nil {
		return nil, err
	}
	if err := tx.holds(UserKey(userID)); err != nil {
		return nil, err
	}
	if e, ok := tx.sessions[userID]; ok {
		return e, nil
	}
	sess, found, err := load(tx.ctx, tx.s, KeyspaceSessions, userID, models.DecodeSession)
	if err != nil {
		return nil, err
	}
	e := &sessionEntry{rec: sess, deleted: !found}
	if found {
		if e.orig, err = models.EncodeSession(sess); err != nil {
			return nil, unavailable("encode", KeyspaceSessions, userID, err)
		}
	}
	tx.sessions[userID] = e
	return e, nil
}

// PutSession replaces the user's session.
func (tx *Tx) PutSession(sess *models.AdventureSession) error {
	e, err := tx.session(sess.UserID)
	if err != nil {
		return err
	}
	e.rec = sess
	e.deleted = false
	return nil
}

// DeleteSession removes the user's session, if any.
func (tx *Tx) DeleteSession(userID string) error {
	e, err := tx.session(userID)
	if err != nil {
		return err
	}
	e.rec = nil
	e.deleted = true
	return nil
}

// commit writes every record whose encoding changed.
func (tx *Tx) commit() error {
	for _, id := range sortedKeys(tx.cultists) {
		e := tx.cultists[id]
		e.rec.Refresh()
		if err := tx.write(KeyspaceCultists, id, e.orig, func() ([]byte, error) { return models.EncodeCultist(e.rec) }); err != nil {
			return err
		}
	}
	for _, id := range sortedKeys(tx.servers) {
		e := tx.servers[id]
		if err := tx.write(KeyspaceServers, id, e.orig, func() ([]byte, error) { return models.EncodeServer(e.rec) }); err != nil {
			return err
		}
	}
	for _, id := range sortedKeys(tx.sessions) {
		e := tx.sessions[id]
		if e.deleted {
			if e.orig == nil {
				continue
			}
			if err := tx.s.backend.Delete(tx.ctx, KeyspaceSessions, id); err != nil {
				return unavailable("delete", KeyspaceSessions, id, err)
			}
			continue
		}
		if err := tx.write(KeyspaceSessions, id, e.orig, func() ([]byte, error) { return models.EncodeSession(e.rec) }); err != nil {
			return err
		}
	}
	return nil
}

func (tx *Tx) write(keyspace, id string, orig []byte, encode func() ([]byte, error)) error {
	data, err := encode()
	if err != nil {
		return unavailable("encode", keyspace, id, err)
	}
	if orig != nil && bytes.Equal(orig, data) {
		return nil
	}
	if err := tx.s.backend.Save(tx.ctx, keyspace, id, data); err != nil {
		return unavailable("save", keyspace, id, err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
