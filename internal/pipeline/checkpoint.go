package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/placer/internal/profile"
	"github.com/roach88/placer/internal/resolver"
)

// DomainCheckpoint prefixes checkpoint digests. The version suffix allows a
// future change of the digest layout.
const DomainCheckpoint = "placer/checkpoint/v1"

// Checkpoint is a restorable snapshot of a session.
type Checkpoint struct {
	// ID identifies the checkpoint (UUIDv7 by default).
	ID string `json:"id"`

	// Seq is the logical clock value, i.e. records ingested.
	Seq int64 `json:"seq"`

	Resolver resolver.Snapshot `json:"resolver"`
	Profile  profile.State     `json:"profile"`

	// Digest is SHA-256 over the domain, seq, resolver and profile.
	Digest string `json:"digest"`
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain and data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ComputeDigest returns the integrity digest of cp, ignoring cp.ID and
// cp.Digest. encoding/json writes map keys sorted, and both snapshots export
// their slices in a fixed order, so the digest is stable.
func ComputeDigest(cp Checkpoint) (string, error) {
	payload := struct {
		Seq      int64             `json:"seq"`
		Resolver resolver.Snapshot `json:"resolver"`
		Profile  profile.State     `json:"profile"`
	}{cp.Seq, cp.Resolver, cp.Profile}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal checkpoint: %w", err)
	}
	return hashWithDomain(DomainCheckpoint, data), nil
}

// Verify checks cp.Digest against its content.
func (cp Checkpoint) Verify() error {
	want, err := ComputeDigest(cp)
	if err != nil {
		return err
	}
	if cp.Digest != want {
		return fmt.Errorf("digest mismatch: have %q, computed %q", cp.Digest, want)
	}
	return nil
}

// Checkpoint captures the session state at the current record boundary.
func (s *Session) Checkpoint() (Checkpoint, error) {
	s.mu.Lock()
	cp := Checkpoint{
		Seq:      s.clock.Current(),
		Resolver: s.resolver.Export(),
		Profile:  s.profiler.Export(),
	}
	s.mu.Unlock()

	digest, err := ComputeDigest(cp)
	if err != nil {
		return Checkpoint{}, err
	}
	cp.Digest = digest
	cp.ID = s.ids.Generate()
	return cp, nil
}

// Restore replaces the session state with cp after verifying its digest and
// internal consistency. On error the session is unchanged.
func (s *Session) Restore(cp Checkpoint) error {
	corrupt := func(msg string, err error) error {
		return &PipelineError{Code: ErrCodeSnapshotCorrupt, Message: msg, Seq: cp.Seq, Err: err}
	}

	if err := cp.Verify(); err != nil {
		return corrupt("checkpoint "+cp.ID, err)
	}
	if cp.Seq != cp.Profile.TotalRecords {
		return corrupt(fmt.Sprintf("seq %d disagrees with %d profiled records", cp.Seq, cp.Profile.TotalRecords), nil)
	}

	r := s.newResolver()
	if err := r.Import(cp.Resolver); err != nil {
		return corrupt("import resolver", err)
	}
	p := s.newProfiler()
	if err := p.Import(cp.Profile); err != nil {
		return corrupt("import profile", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver = r
	s.profiler = p
	s.clock = NewClockAt(cp.Seq)

	s.logger.Info("session restored", "checkpoint", cp.ID, "seq", cp.Seq)
	return nil
}
