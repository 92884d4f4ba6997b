package models

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/reposhelf/internal/common"
)

// Repo is a detached snapshot of one row of the repo table.
//
// The store never updates a Repo after handing it out. A caller that writes
// through the store and wants its copy to follow must call SetValues with
// the field-set that was written; concurrent writes by others are not
// reflected until the next read.
type Repo struct {
	ID          int64
	Address     string
	Name        string
	Description string
	InUse       bool
	Priority    int
	PublicKey   string
	Fingerprint string
	MaxAge      int
	// LastETag is the sync cache token. nil means NULL.
	LastETag *string
	// LastUpdated is written by the sync process only. nil means NULL.
	LastUpdated *time.Time
	Version     int
}

// IsSigned reports whether the repo carries a trust anchor.
func (r *Repo) IsSigned() bool {
	return r.PublicKey != ""
}

// HasBeenUpdated reports whether a sync has stored a cache token.
func (r *Repo) HasBeenUpdated() bool {
	return r.LastETag != nil
}

// Path is the external single-record address, e.g. "repos/3".
func (r *Repo) Path() string {
	return common.CollectionPath + "/" + strconv.FormatInt(r.ID, 10)
}

// SetValues merges a successfully written field-set into the snapshot.
// Present keys overwrite, absent keys are left alone, NULL clears nullable
// fields and zeroes the rest. The id is never changed.
func (r *Repo) SetValues(v Values) {
	for _, key := range v.Keys() {
		switch key {
		case ColAddress:
			r.Address, _ = v.String(key)
		case ColName:
			r.Name, _ = v.String(key)
		case ColDescription:
			r.Description, _ = v.String(key)
		case ColPublicKey:
			r.PublicKey, _ = v.String(key)
		case ColFingerprint:
			r.Fingerprint, _ = v.String(key)
		case ColInUse:
			r.InUse, _ = v.Bool(key)
		case ColPriority:
			n, _ := v.Int(key)
			r.Priority = int(n)
		case ColMaxAge:
			n, _ := v.Int(key)
			r.MaxAge = int(n)
		case ColVersion:
			n, _ := v.Int(key)
			r.Version = int(n)
		case ColLastETag:
			if v.IsNull(key) {
				r.LastETag = nil
				continue
			}
			s, _ := v.String(key)
			r.LastETag = &s
		case ColLastUpdated:
			raw, _ := v.Get(key)
			t, err := toTime(raw)
			if raw == nil || err != nil {
				r.LastUpdated = nil
				continue
			}
			r.LastUpdated = &t
		}
	}
}

// NameFromAddress derives a display name from a repo address: the scheme,
// credentials, query and trailing slashes are dropped, host and path are
// kept. The result depends only on the address.
func NameFromAddress(address string) string {
	trimmed := strings.TrimSpace(address)

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		if i := strings.Index(trimmed, "://"); i >= 0 {
			trimmed = trimmed[i+3:]
		}
		return strings.TrimRight(trimmed, "/")
	}

	return strings.TrimRight(u.Host+u.EscapedPath(), "/")
}
