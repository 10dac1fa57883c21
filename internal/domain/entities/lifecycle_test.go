package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func yearVault() *Vault {
	return &Vault{
		VaultID:                "vault-a",
		Owner:                  "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7",
		Status:                 StatusActive,
		InheritanceDelayBlocks: 144 * 365,
		GracePeriodBlocks:      144 * 7,
		LastActivityAt:         0,
		Beneficiaries: []Beneficiary{
			{Address: "SP000000000000000000002Q6VF78", AllocationPercentage: 100},
		},
	}
}

func TestClassifyYearLongDelay(t *testing.T) {
	v := yearVault()

	tests := []struct {
		name string
		now  uint64
		want LifecycleState
	}{
		{"mid delay", 144 * 200, StateActive},
		{"just under 80%", 144*365*4/5 - 1, StateActive},
		{"at 80% of delay", 144 * 365 * 4 / 5, StateNearDeadline},
		{"last block of delay", 144*365 - 1, StateNearDeadline},
		{"delay elapsed", 144 * 365, StateGracePeriod},
		{"inside grace", 144 * 370, StateGracePeriod},
		{"grace exhausted", 144 * 372, StateReadyForInheritance},
		{"well past grace", 144 * 373, StateReadyForInheritance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(v, tt.now))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	v := yearVault()
	first := Classify(v, 144*370)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(v, 144*370))
	}
	// Classification does not mutate the snapshot.
	assert.Equal(t, uint64(0), v.LastActivityAt)
	assert.Equal(t, StatusActive, v.Status)
}

func TestClassifyTriggeredStates(t *testing.T) {
	v := yearVault()
	v.Status = StatusInheritanceTriggered
	v.Execution = &InheritanceExecution{TriggeredAt: 1000, TriggeredBy: "SP000000000000000000002Q6VF78"}

	assert.Equal(t, StateInheritanceTriggered, Classify(v, 2000))

	v.Beneficiaries[0].Claimed = true
	assert.Equal(t, StatePayoutCompleted, Classify(v, 2000))

	v.Beneficiaries[0].Claimed = false
	assert.Equal(t, StateExpired, Classify(v, 1000+ClaimWindowBlocks+1),
		"unclaimed shares past the claim window expire")
}

func TestClassifyEmergencyPaused(t *testing.T) {
	v := yearVault()
	v.Status = StatusEmergencyPaused
	// Paused wins over any elapsed time.
	assert.Equal(t, StateEmergencyPaused, Classify(v, 144*1000))
}

func TestCanTriggerOnlyWhenReady(t *testing.T) {
	v := yearVault()
	assert.False(t, CanTrigger(v, 144*200))
	assert.False(t, CanTrigger(v, 144*365*4/5))
	assert.False(t, CanTrigger(v, 144*366))
	assert.True(t, CanTrigger(v, 144*373))

	v.Status = StatusInheritanceTriggered
	assert.False(t, CanTrigger(v, 144*373))
}

func TestCanUpdateProofOfLife(t *testing.T) {
	v := yearVault()
	assert.True(t, CanUpdateProofOfLife(v, 144*200))
	assert.True(t, CanUpdateProofOfLife(v, 144*364), "near deadline still refreshable")
	assert.False(t, CanUpdateProofOfLife(v, 144*366), "grace period refresh must fail")
	assert.False(t, CanUpdateProofOfLife(v, 144*373))

	v.Status = StatusEmergencyPaused
	assert.False(t, CanUpdateProofOfLife(v, 144*200))
}

func TestLegalActions(t *testing.T) {
	v := yearVault()

	assert.Contains(t, LegalActions(v, 144*200), ActionProofOfLife)
	assert.Contains(t, LegalActions(v, 144*200), ActionDeposit)
	assert.NotContains(t, LegalActions(v, 144*200), ActionTrigger)

	assert.Equal(t, []Action{ActionDeposit}, LegalActions(v, 144*366))
	assert.Equal(t, []Action{ActionTrigger}, LegalActions(v, 144*373))

	v.Status = StatusInheritanceTriggered
	assert.Equal(t, []Action{ActionClaim}, LegalActions(v, 144*373))

	v.Status = StatusEmergencyPaused
	assert.Empty(t, LegalActions(v, 144*373))
}
