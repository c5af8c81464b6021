// Package engine composes the field arithmetic, partition, selector, and
// container layers into the user-facing operations: initialize a container,
// write a document under a credential, read it back, and apply atomic
// in-place updates.
//
// Every read failure surfaces as the single ErrDecryptionFailed. Wrong
// password, wrong credential, absent document, and damaged share values are
// indistinguishable from the outside; anything more specific would hand an
// adversary an oracle over the container's contents.
package engine

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/mrz1836/palimpsest/internal/container"
	"github.com/mrz1836/palimpsest/internal/field"
	"github.com/mrz1836/palimpsest/internal/kdf"
	"github.com/mrz1836/palimpsest/internal/metrics"
	"github.com/mrz1836/palimpsest/internal/partition"
	"github.com/mrz1836/palimpsest/internal/selector"
	"github.com/mrz1836/palimpsest/internal/update"
)

const saltLength = 32

// canonCredential normalizes seed-string credentials to their canonical
// form. Sealed credentials pass through untouched; normalization would
// strip the envelope the selector needs to open them.
func canonCredential(credential string) string {
	if partition.IsSealed(credential) {
		return credential
	}
	return partition.NormalizeCredential(credential)
}

var (
	// ErrDecryptionFailed is the only error a failed read produces.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidParams indicates engine parameters that cannot describe a
	// usable container.
	ErrInvalidParams = errors.New("invalid engine parameters")
)

// Params fixes the geometry and hardness of every container this engine
// touches. Prime, SpaceSize, and ChunkBytes must match the container being
// opened; they are not renegotiated per call.
type Params struct {
	Prime      *big.Int
	SpaceSize  int
	Threshold  int
	ChunkBytes int

	// Ratio sizes seed-derived candidate subsets relative to the ID space.
	Ratio float64

	KDF    kdf.Params
	Update update.Config
}

// Engine executes container operations under one fixed Params.
type Engine struct {
	params Params
	sel    *selector.Selector
}

// New validates params and builds an engine around them.
func New(params Params) (*Engine, error) {
	if params.Prime == nil || params.Prime.Sign() <= 0 {
		return nil, fmt.Errorf("%w: prime required", ErrInvalidParams)
	}
	if params.ChunkBytes <= 0 {
		params.ChunkBytes = container.DefaultChunkBytes
	}
	if params.ChunkBytes*8 >= params.Prime.BitLen() {
		return nil, fmt.Errorf("%w: chunk size %d bytes does not fit below a %d-bit prime",
			ErrInvalidParams, params.ChunkBytes, params.Prime.BitLen())
	}
	if params.Threshold < 2 {
		return nil, fmt.Errorf("%w: threshold must be at least 2", ErrInvalidParams)
	}
	if params.SpaceSize < 2*params.Threshold {
		return nil, fmt.Errorf("%w: ID space %d too small for threshold %d",
			ErrInvalidParams, params.SpaceSize, params.Threshold)
	}
	if params.Ratio <= 0 || params.Ratio >= 1 {
		return nil, fmt.Errorf("%w: subset ratio must be in (0, 1)", ErrInvalidParams)
	}

	return &Engine{
		params: params,
		sel:    selector.New(params.KDF),
	}, nil
}

// Params returns the engine's parameters.
func (e *Engine) Params() Params {
	return e.params
}

// thresholdFor returns the reconstruction threshold for c. The header
// records the threshold the container was written with; that wins over the
// engine default so a container created under one configuration still opens
// after the configuration changes. An unusable header value falls back to
// the engine's own threshold.
func (e *Engine) thresholdFor(c *container.Container) int {
	t := c.Header.Threshold
	if t < 2 || 2*t > c.SpaceSize() {
		return e.params.Threshold
	}
	return t
}

// Init creates a container holding no documents: a fresh salt and uniform
// random filler in every position. A container straight out of Init is
// byte-for-byte indistinguishable from one carrying documents.
func (e *Engine) Init(totalChunks int) (*container.Container, error) {
	if totalChunks <= 0 {
		return nil, fmt.Errorf("%w: container needs at least one chunk", ErrInvalidParams)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	c := container.New(container.Header{
		Salt:        salt,
		Threshold:   e.params.Threshold,
		TotalChunks: totalChunks,
		Prime:       e.params.Prime,
	}, e.params.SpaceSize)

	if err := container.FillRandom(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Encrypt writes doc into c under the credential and password, replacing
// any document previously held by the same pair. The container grows when
// the document needs more chunks than it has; positions the document no
// longer needs are re-randomized so stale shares never linger.
func (e *Engine) Encrypt(c *container.Container, doc []byte, credential, password string) error {
	credential = canonCredential(credential)
	threshold := e.thresholdFor(c)

	ids, err := e.sel.ForEncrypt(credential, password, c.Header.Salt,
		c.SpaceSize(), threshold, e.params.Ratio)
	if err != nil {
		return err
	}

	chunks, err := container.EncodeDocument(doc, e.params.ChunkBytes, c.Header.Prime)
	if err != nil {
		return err
	}

	if len(chunks) > c.Header.TotalChunks {
		c.Grow(len(chunks))
		if err := container.FillRandom(c); err != nil {
			return err
		}
	}

	for chunk, secret := range chunks {
		shares, err := field.Split(secret, threshold, ids, c.Header.Prime)
		if err != nil {
			return err
		}
		for _, sh := range shares {
			if err := c.Set(chunk, sh.ID, sh.Value); err != nil {
				return err
			}
		}
	}

	// Scrub the tail: chunks beyond the new document's length may still
	// hold this credential's previous shares.
	for chunk := len(chunks); chunk < c.Header.TotalChunks; chunk++ {
		if err := container.RefillPositions(c, chunk, ids); err != nil {
			return err
		}
	}

	metrics.Global.RecordEncrypt()
	return nil
}

// Decrypt recovers the document stored under the credential and password.
// It walks threshold-sized windows over the ranked candidate IDs; any kind
// of failure collapses into ErrDecryptionFailed.
func (e *Engine) Decrypt(c *container.Container, credential, password string) ([]byte, error) {
	credential = canonCredential(credential)
	threshold := e.thresholdFor(c)

	ranked, err := e.sel.ForDecrypt(credential, password, c.Header.Salt,
		c.SpaceSize(), threshold, e.params.Ratio)
	if err != nil || len(ranked) < threshold {
		e.burnEqualWork(c, threshold)
		metrics.Global.RecordDecrypt(true)
		return nil, ErrDecryptionFailed
	}

	for start := 0; start+threshold <= len(ranked); start++ {
		doc, ok := e.tryWindow(c, ranked[start:start+threshold])
		if ok {
			metrics.Global.RecordDecrypt(false)
			return doc, nil
		}
	}

	metrics.Global.RecordDecrypt(true)
	return nil, ErrDecryptionFailed
}

// tryWindow reconstructs every chunk from the given ID window and attempts
// to decode the result as a document.
func (e *Engine) tryWindow(c *container.Container, ids []int) ([]byte, bool) {
	chunks := make([]*big.Int, c.Header.TotalChunks)
	shares := make([]field.Share, len(ids))

	for chunk := 0; chunk < c.Header.TotalChunks; chunk++ {
		for i, id := range ids {
			value, ok := c.Get(chunk, id)
			if !ok {
				return nil, false
			}
			shares[i] = field.Share{ID: id, Value: value}
		}
		secret, err := field.Reconstruct(shares, c.Header.Prime)
		if err != nil {
			return nil, false
		}
		chunks[chunk] = secret
	}

	doc, err := container.DecodeDocument(chunks, e.params.ChunkBytes, c.Header.Prime)
	if err != nil {
		return nil, false
	}
	return doc, true
}

// burnEqualWork reconstructs against arbitrary IDs so a too-small candidate
// set costs the same wall time as a wrong password, which walks every window
// over a full ranked list. Timing must not reveal which kind of failure
// occurred, so the burn covers the same window count.
func (e *Engine) burnEqualWork(c *container.Container, threshold int) {
	span := 3 * threshold
	if span > c.SpaceSize() {
		span = c.SpaceSize()
	}
	ids := make([]int, span)
	for i := range ids {
		ids[i] = i + 1
	}
	for start := 0; start+threshold <= len(ids); start++ {
		_, _ = e.tryWindow(c, ids[start:start+threshold])
	}
}

// Update atomically replaces the document stored under the credential in
// the container file at path. The merge runs under an exclusive lock with a
// write-ahead log; the staged container is verified by decrypting the
// document back before the commit rename, and any failure rolls the file
// back to its pre-update bytes.
func (e *Engine) Update(ctx context.Context, path string, doc []byte, credential, password string) error {
	upd := update.NewEngine(e.params.Update)

	merge := func(current []byte) ([]byte, error) {
		c, err := container.Unmarshal(current)
		if err != nil {
			return nil, err
		}
		if err := e.Encrypt(c, doc, credential, password); err != nil {
			return nil, err
		}
		return container.Marshal(c)
	}

	verify := func(merged []byte) error {
		c, err := container.Unmarshal(merged)
		if err != nil {
			return err
		}
		got, err := e.Decrypt(c, credential, password)
		if err != nil {
			return err
		}
		if !bytes.Equal(got, doc) {
			return errors.New("staged container does not round-trip the document")
		}
		return nil
	}

	return upd.Apply(ctx, path, merge, verify)
}
