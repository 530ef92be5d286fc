// Package resolver maps topics to schema registry subjects. A topic has a
// key side and a value side, each resolved independently through a fixed
// precedence of naming strategies.
package resolver

import (
	"context"
	"sort"
	"strings"

	"github.com/c360/streamcatalog/errors"
	"github.com/c360/streamcatalog/registry"
)

// Side distinguishes the key and value schema of a topic.
type Side string

// Topic schema sides
const (
	SideKey   Side = "key"
	SideValue Side = "value"
)

// Suffix is the registry subject suffix for this side.
func (s Side) Suffix() string {
	return "-" + string(s)
}

// Strategy identifies how a subject was chosen for a topic side.
type Strategy int

// Subject naming strategies, in precedence order.
const (
	StrategyNone Strategy = iota
	StrategyOverride
	StrategyTopicName
	StrategyRecordName
	StrategyTopicRecordName
)

func (s Strategy) String() string {
	switch s {
	case StrategyOverride:
		return "override"
	case StrategyTopicName:
		return "topic-name"
	case StrategyRecordName:
		return "record-name"
	case StrategyTopicRecordName:
		return "topic-record-name"
	default:
		return "none"
	}
}

// Resolution is the outcome for a single topic side. A nil Schema with
// StrategyNone means no subject matched; a nil Schema with a non-none
// strategy means the subject was chosen but the registry no longer has it.
type Resolution struct {
	Subject  string
	Strategy Strategy
	Schema   *registry.RegisteredSchema
}

// Pair holds the key and value resolutions for one topic. Either side may
// be unresolved.
type Pair struct {
	Topic string
	Key   Resolution
	Value Resolution
}

// Resolver resolves topic sides to subjects against a primed subject list.
type Resolver struct {
	client      registry.Client
	overrides   map[string]string
	recordNames map[string]string

	subjectSet  map[string]struct{}
	subjectList []string
	primed      bool
}

// New creates a Resolver. overrides maps "<topic>-key"/"<topic>-value" to
// explicit subjects. recordNames maps the same keys, or a bare topic name
// as a fallback for both sides, to record names for the RecordName
// strategy.
func New(client registry.Client, overrides, recordNames map[string]string) *Resolver {
	return &Resolver{
		client:      client,
		overrides:   overrides,
		recordNames: recordNames,
	}
}

// Prime fetches the registry subject list once for the run. Resolution
// before a successful Prime treats the subject set as empty.
func (r *Resolver) Prime(ctx context.Context) error {
	subjects, err := r.client.Subjects(ctx)
	if err != nil {
		return errors.Wrap(err, "Resolver", "Prime", "list subjects")
	}

	r.subjectSet = make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		r.subjectSet[s] = struct{}{}
	}
	r.subjectList = append([]string(nil), subjects...)
	sort.Strings(r.subjectList)
	r.primed = true
	return nil
}

// Primed reports whether the subject list has been fetched.
func (r *Resolver) Primed() bool {
	return r.primed
}

// SubjectFor resolves one side of a topic to a subject without touching the
// registry. The boolean is false when no strategy produced a subject.
func (r *Resolver) SubjectFor(topic string, side Side) (string, Strategy, bool) {
	sideKey := topic + side.Suffix()

	if subject, ok := r.overrides[sideKey]; ok {
		return subject, StrategyOverride, true
	}

	if _, ok := r.subjectSet[sideKey]; ok {
		return sideKey, StrategyTopicName, true
	}

	if record := r.recordName(topic, sideKey); record != "" {
		if _, ok := r.subjectSet[record]; ok {
			return record, StrategyRecordName, true
		}
	}

	// TopicRecordName subjects look like "<topic>-<record.FullName>-<side>".
	// Scan the sorted list so repeated runs pick the same subject.
	prefix := topic + "-"
	for _, subject := range r.subjectList {
		if strings.HasPrefix(subject, prefix) && strings.HasSuffix(subject, side.Suffix()) &&
			len(subject) > len(prefix)+len(side.Suffix()) {
			return subject, StrategyTopicRecordName, true
		}
	}

	return "", StrategyNone, false
}

// recordName looks up the configured record name for a topic side, falling
// back to a bare topic entry covering both sides.
func (r *Resolver) recordName(topic, sideKey string) string {
	if name, ok := r.recordNames[sideKey]; ok {
		return name
	}
	return r.recordNames[topic]
}

// Resolve resolves both sides of a topic and fetches the matched schemas.
func (r *Resolver) Resolve(ctx context.Context, topic string) (Pair, error) {
	pair := Pair{Topic: topic}

	for _, side := range []Side{SideKey, SideValue} {
		subject, strategy, ok := r.SubjectFor(topic, side)
		if !ok {
			continue
		}

		schema, err := r.client.LatestVersion(ctx, subject)
		if err != nil {
			return Pair{}, errors.Wrap(err, "Resolver", "Resolve", "fetch schema for "+subject)
		}

		res := Resolution{Subject: subject, Strategy: strategy, Schema: schema}
		if side == SideKey {
			pair.Key = res
		} else {
			pair.Value = res
		}
	}

	return pair, nil
}
