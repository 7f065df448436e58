package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles with optional gradual rollout.
// Rollout assignment hashes the user ID so a user stays in the same
// bucket across restarts.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// === Progress Features ===
	FeatureAchievements = "progress.achievements" // Badge evaluation after writes
	FeatureGoalAdvance  = "progress.goal_advance" // Standalone goals advance on lesson completion

	// === Infrastructure Features ===
	FeatureCacheLayer = "infra.cache_layer" // Redis read-through cache
	FeaturePruneJob   = "infra.prune_job"   // Nightly activity log pruning

	// === Account Features ===
	FeatureSignup        = "account.signup"         // Allow new registrations
	FeaturePasswordReset = "account.password_reset" // Reset-by-email flow
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features: make(map[string]*Feature),
	}
	ff.initializeDefaults()
	ff.loadFromEnvironment()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	defaults := []Feature{
		{FeatureAchievements, "Evaluate achievement badges after progress writes", true, 100},
		{FeatureGoalAdvance, "Advance standalone goals when lessons are completed", true, 100},
		{FeatureCacheLayer, "Cache per-user blobs in Redis", true, 100},
		{FeaturePruneJob, "Nightly pruning of aged-out streak activity", true, 100},
		{FeatureSignup, "Allow new account registration", true, 100},
		{FeaturePasswordReset, "Password reset by email", true, 100},
	}
	for i := range defaults {
		f := defaults[i]
		ff.features[f.Name] = &f
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_PROGRESS_ACHIEVEMENTS=false
// Example: FEATURE_INFRA_CACHE_LAYER=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}

		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			if b {
				feature.RolloutPercent = 100
			} else {
				feature.RolloutPercent = 0
			}
			continue
		}

		if pct, err := strconv.Atoi(val); err == nil && pct >= 0 && pct <= 100 {
			feature.Enabled = pct > 0
			feature.RolloutPercent = pct
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "progress.achievements" -> "FEATURE_PROGRESS_ACHIEVEMENTS"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.NewReplacer(".", "_", "-", "_").Replace(key)
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled globally.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, exists := ff.features[featureName]
	if !exists {
		return false
	}
	return feature.Enabled && feature.RolloutPercent > 0
}

// IsEnabledFor checks if a feature is enabled for a specific user,
// taking the rollout percentage into account.
func (ff *FeatureFlags) IsEnabledFor(featureName, userID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, exists := ff.features[featureName]
	if !exists || !feature.Enabled {
		return false
	}
	if feature.RolloutPercent >= 100 {
		return true
	}
	if feature.RolloutPercent <= 0 {
		return false
	}
	return inRollout(userID, featureName, feature.RolloutPercent)
}

// inRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func inRollout(userID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(userID))
	h.Write([]byte(featureName))
	return int(h.Sum32()%100) < percent
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	if percent < 0 || percent > 100 {
		return &FeatureFlagError{Feature: featureName, Message: "rollout percent must be 0-100"}
	}

	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, exists := ff.features[featureName]
	if !exists {
		return &FeatureFlagError{Feature: featureName, Message: "unknown feature"}
	}
	feature.RolloutPercent = percent
	feature.Enabled = percent > 0
	return nil
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make(map[string]Feature, len(ff.features))
	for name, f := range ff.features {
		out[name] = *f
	}
	return out
}

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Feature string
	Message string
}

func (e *FeatureFlagError) Error() string {
	return "feature " + e.Feature + ": " + e.Message
}
