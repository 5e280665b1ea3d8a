package activity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Classify(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, AccountFatal, p.Classify(NameLogin))
	assert.Equal(t, AccountFatal, p.Classify(NameSession))
	assert.Equal(t, AccountFatal, p.Classify(NameSearches))
	assert.Equal(t, BestEffort, p.Classify(NameDailySet))
	assert.Equal(t, BestEffort, p.Classify(NamePunchCards))
	assert.Equal(t, BestEffort, p.Classify(NameMorePromotions))

	// unknown activities default to best-effort
	assert.Equal(t, BestEffort, p.Classify("versus_game"))
}

func TestResult(t *testing.T) {
	assert.True(t, Ok(100).Succeeded())
	assert.False(t, Failed(errors.New("boom")).Succeeded())
	assert.EqualValues(t, 100, Ok(100).Balance)
}

func TestLoginStatus_String(t *testing.T) {
	assert.Equal(t, "success", LoginSuccess.String())
	assert.Equal(t, "locked", LoginLocked.String())
	assert.Equal(t, "needs_verification", LoginNeedsVerification.String())
}
