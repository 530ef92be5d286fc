package source

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/c360/streamcatalog/catalog"
	"github.com/c360/streamcatalog/config"
	"github.com/c360/streamcatalog/kafka"
	"github.com/c360/streamcatalog/resolver"
	"github.com/c360/streamcatalog/schema"
)

// buildWorkunits assembles the two workunits of a topic: the dataset
// snapshot and its subtype tag. Pure function of its inputs so the same
// topic state always yields the same output.
func buildWorkunits(
	cfg *config.Config,
	topic string,
	pair resolver.Pair,
	merged schema.Merged,
	configs []kafka.ConfigEntry,
) []catalog.Workunit {
	urn := catalog.DatasetURN(catalog.DefaultPlatform, topic, cfg.PlatformInstance, cfg.Environment)

	aspects := []catalog.Aspect{catalog.Status{Removed: false}}

	if !merged.Empty() {
		aspects = append(aspects, buildSchemaMetadata(topic, pair, merged))
	}

	if cfg.PlatformInstance != "" {
		aspects = append(aspects, catalog.DataPlatformInstance{
			Instance: catalog.PlatformInstanceURN(catalog.DefaultPlatform, cfg.PlatformInstance),
		})
	}

	aspects = append(aspects, catalog.BrowsePaths{
		Paths: []string{catalog.BrowsePath(cfg.Environment, catalog.DefaultPlatform, cfg.PlatformInstance, topic)},
	})

	if len(configs) > 0 {
		props := make(map[string]string, len(configs))
		for _, entry := range configs {
			props[entry.Key] = entry.Value
		}
		aspects = append(aspects, catalog.DatasetProperties{CustomProperties: props})
	}

	return []catalog.Workunit{
		{
			ID:       topic,
			Snapshot: catalog.Snapshot{URN: urn, Aspects: aspects},
		},
		{
			ID: topic + "-subtype",
			Snapshot: catalog.Snapshot{
				URN:     urn,
				Aspects: []catalog.Aspect{catalog.SubTypes{TypeNames: []string{"Topic"}}},
			},
		},
	}
}

// buildSchemaMetadata combines the raw registered definitions and the
// flattened field list. Only sides that parsed contribute; the value side
// supplies the reported version when present, the key side otherwise.
func buildSchemaMetadata(topic string, pair resolver.Pair, merged schema.Merged) catalog.SchemaMetadata {
	meta := catalog.SchemaMetadata{
		SchemaName: topic,
		Platform:   catalog.PlatformURN(catalog.DefaultPlatform),
		Fields:     merged.Fields,
	}

	var combined string
	if merged.KeyOK && pair.Key.Schema != nil {
		meta.KeySchema = pair.Key.Schema.Definition
		meta.Version = pair.Key.Schema.Version
		combined += pair.Key.Schema.Definition
	}
	if merged.ValueOK && pair.Value.Schema != nil {
		meta.ValueSchema = pair.Value.Schema.Definition
		meta.Version = pair.Value.Schema.Version
		combined += pair.Value.Schema.Definition
	}

	sum := md5.Sum([]byte(combined))
	meta.Hash = hex.EncodeToString(sum[:])
	return meta
}
