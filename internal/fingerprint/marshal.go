package fingerprint

import (
	"encoding/json"
	"fmt"
	"time"
)

// CacheKey is the fixed key under which the whole fingerprint mapping
// is stored in the persistent cache.
const CacheKey = "fingerprints/v1"

// envelopeVersion tracks the persisted representation:
// 1 - initial format (records keyed by path, mtimes as UnixNano)
const envelopeVersion = 1

// envelope is the persisted form of a Store's record mapping.
//
// SeenBefore is deliberately absent: any record present in a persisted
// envelope survived a full prior run, so it is re-materialized with
// SeenBefore = true. Persisting the flag as false would make every
// artifact rebuild once per run and incremental mode would never
// converge.
type envelope struct {
	Version int                       `json:"version"`
	RunID   string                    `json:"run_id,omitempty"`
	Records map[string]envelopeRecord `json:"records"`
}

type envelopeRecord struct {
	// LastModified is UnixNano; integer mtimes survive JSON round
	// trips exactly, unlike formatted timestamps.
	LastModified int64    `json:"last_modified"`
	Dynamic      bool     `json:"dynamic,omitempty"`
	Forced       bool     `json:"forced,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// marshalRecords encodes the record mapping for persistence.
// Output is deterministic: map keys encode sorted (Go json behavior)
// and dependency lists are sorted explicitly.
func marshalRecords(records map[string]*Record, runID string) ([]byte, error) {
	env := envelope{
		Version: envelopeVersion,
		RunID:   runID,
		Records: make(map[string]envelopeRecord, len(records)),
	}
	for path, rec := range records {
		env.Records[path] = envelopeRecord{
			LastModified: rec.LastModified.UnixNano(),
			Dynamic:      rec.Dynamic,
			Forced:       rec.Forced,
			Dependencies: rec.DependencyList(),
		}
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal fingerprint envelope: %w", err)
	}
	return data, nil
}

// unmarshalRecords decodes a persisted envelope back into a record
// mapping. Loaded records come back with SeenBefore = true.
func unmarshalRecords(data []byte) (map[string]*Record, string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", fmt.Errorf("unmarshal fingerprint envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return nil, "", fmt.Errorf("unsupported fingerprint envelope version %d", env.Version)
	}
	records := make(map[string]*Record, len(env.Records))
	for path, er := range env.Records {
		rec := newRecord(path, time.Unix(0, er.LastModified), er.Dynamic, er.Forced)
		rec.SeenBefore = true
		for _, dep := range er.Dependencies {
			rec.addDependency(dep)
		}
		records[path] = rec
	}
	return records, env.RunID, nil
}
