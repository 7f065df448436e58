package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFeatureFlags_Defaults(t *testing.T) {
	ff := LoadFeatureFlags()

	for name := range ff.GetAllFeatures() {
		assert.True(t, ff.IsEnabled(name), "feature %s should default to on", name)
	}
}

func TestIsEnabled_UnknownFeature(t *testing.T) {
	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled("progress.teleportation"))
}

func TestEnvOverride_BoolAndPercent(t *testing.T) {
	t.Setenv("FEATURE_ACCOUNT_SIGNUP", "false")
	t.Setenv("FEATURE_INFRA_CACHE_LAYER", "50")

	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureSignup))
	assert.True(t, ff.IsEnabled(FeatureCacheLayer))
	assert.Equal(t, 50, ff.GetAllFeatures()[FeatureCacheLayer].RolloutPercent)
}

func TestIsEnabledFor_ConsistentBuckets(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureAchievements, 50))

	// The same user always lands in the same bucket.
	first := ff.IsEnabledFor(FeatureAchievements, "user-42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabledFor(FeatureAchievements, "user-42"))
	}
}

func TestIsEnabledFor_RolloutSplitsPopulation(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureAchievements, 50))

	in := 0
	for i := 0; i < 1000; i++ {
		if ff.IsEnabledFor(FeatureAchievements, fmt.Sprintf("user-%d", i)) {
			in++
		}
	}
	// Roughly half the users should be in a 50% rollout.
	assert.Greater(t, in, 350)
	assert.Less(t, in, 650)
}

func TestSetRolloutPercent_Validation(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.Error(t, ff.SetRolloutPercent(FeatureAchievements, 101))
	assert.Error(t, ff.SetRolloutPercent("unknown.flag", 10))

	require.NoError(t, ff.SetRolloutPercent(FeatureAchievements, 0))
	assert.False(t, ff.IsEnabled(FeatureAchievements))
}
