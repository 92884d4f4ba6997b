package repos

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/reposhelf/internal/common"
)

// Kind tells collection and single-record targets apart.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindCollection
	KindSingle
)

// Target addresses either the whole repo collection or one record.
// The zero value is invalid.
type Target struct {
	kind Kind
	id   int64
}

func Collection() Target { return Target{kind: KindCollection} }

func Single(id int64) Target { return Target{kind: KindSingle, id: id} }

// ParseTarget accepts "repos" and "repos/{id}".
func ParseTarget(s string) (Target, error) {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == common.CollectionPath {
		return Collection(), nil
	}

	rest, ok := strings.CutPrefix(s, common.CollectionPath+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return Target{}, fmt.Errorf("%w: %q", common.ErrInvalidTarget, s)
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id < 0 {
		return Target{}, fmt.Errorf("%w: %q", common.ErrInvalidTarget, s)
	}
	return Single(id), nil
}

func (t Target) Kind() Kind { return t.kind }

// ID is the record id of a single target, 0 otherwise.
func (t Target) ID() int64 { return t.id }

func (t Target) IsCollection() bool { return t.kind == KindCollection }

func (t Target) IsSingle() bool { return t.kind == KindSingle }

func (t Target) validate() error {
	if t.kind != KindCollection && t.kind != KindSingle {
		return fmt.Errorf("%w: %s", common.ErrInvalidTarget, t)
	}
	return nil
}

func (t Target) String() string {
	switch t.kind {
	case KindCollection:
		return common.CollectionPath
	case KindSingle:
		return common.CollectionPath + "/" + strconv.FormatInt(t.id, 10)
	default:
		return "<invalid>"
	}
}
