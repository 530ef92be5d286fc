// Package catalog defines the value objects exchanged with the downstream
// metadata catalog: URNs, aspects, snapshots, and workunits. The catalog's
// identifier scheme is treated as opaque; this package only constructs and
// serializes it.
package catalog

import (
	"fmt"
	"strings"
)

// DefaultPlatform is the platform identifier for Kafka-compatible brokers.
const DefaultPlatform = "kafka"

// PlatformURN returns the catalog URN for a data platform.
func PlatformURN(platform string) string {
	return "urn:li:dataPlatform:" + platform
}

// PlatformInstanceURN returns the catalog URN for a named deployment of a
// platform.
func PlatformInstanceURN(platform, instance string) string {
	return fmt.Sprintf("urn:li:dataPlatformInstance:(%s,%s)", PlatformURN(platform), instance)
}

// DatasetURN returns the catalog URN for a dataset. When a platform instance
// is configured the dataset name is qualified with it.
func DatasetURN(platform, name, instance, env string) string {
	if instance != "" {
		name = instance + "." + name
	}
	return fmt.Sprintf("urn:li:dataset:(%s,%s,%s)", PlatformURN(platform), name, env)
}

// BrowsePath returns the slash-joined browse path for a dataset:
// /{env}/{platform}/{instance?}/{name}. The environment segment is
// lowercased.
func BrowsePath(env, platform, instance, name string) string {
	parts := []string{"", strings.ToLower(env), platform}
	if instance != "" {
		parts = append(parts, instance)
	}
	parts = append(parts, name)
	return strings.Join(parts, "/")
}
