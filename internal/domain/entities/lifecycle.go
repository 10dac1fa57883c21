package entities

// LifecycleState is the derived, time-dependent vault state. It is a
// pure function of (status, elapsed, delay, grace, claims); nothing here
// reads a clock or global state.
type LifecycleState string

const (
	StateActive               LifecycleState = "ACTIVE"
	StateNearDeadline         LifecycleState = "NEAR_DEADLINE"
	StateGracePeriod          LifecycleState = "GRACE_PERIOD"
	StateReadyForInheritance  LifecycleState = "READY_FOR_INHERITANCE"
	StateInheritanceTriggered LifecycleState = "INHERITANCE_TRIGGERED"
	StatePayoutCompleted      LifecycleState = "PAYOUT_COMPLETED"
	StateEmergencyPaused      LifecycleState = "EMERGENCY_PAUSED"
	StateExpired              LifecycleState = "EXPIRED"
)

// Classify derives the lifecycle state of a vault snapshot at the given
// block height.
func Classify(v *Vault, nowBlockHeight uint64) LifecycleState {
	switch v.Status {
	case StatusInheritanceTriggered, StatusCompleted:
		if v.AllClaimed() {
			return StatePayoutCompleted
		}
		if deadline, ok := claimDeadline(v); ok && nowBlockHeight > deadline {
			return StateExpired
		}
		return StateInheritanceTriggered
	case StatusEmergencyPaused:
		// Terminal until an explicit resume, which is not the engine's call.
		return StateEmergencyPaused
	}

	elapsed := v.Elapsed(nowBlockHeight)
	if elapsed < v.InheritanceDelayBlocks {
		// Near-deadline threshold is 80% of the delay; integer math so
		// the comparison is exact.
		if elapsed*5 >= v.InheritanceDelayBlocks*4 {
			return StateNearDeadline
		}
		return StateActive
	}
	if elapsed < v.InheritanceDelayBlocks+v.GracePeriodBlocks {
		return StateGracePeriod
	}
	return StateReadyForInheritance
}

// claimDeadline returns the latest claim deadline across unclaimed
// beneficiaries, falling back to trigger height + the default window.
func claimDeadline(v *Vault) (uint64, bool) {
	var latest uint64
	for _, b := range v.Beneficiaries {
		if b.Claimed {
			continue
		}
		d := b.ClaimDeadline
		if d == 0 && v.Execution != nil {
			d = v.Execution.TriggeredAt + ClaimWindowBlocks
		}
		if d > latest {
			latest = d
		}
	}
	return latest, latest > 0
}

// CanTrigger reports whether triggering inheritance is legal right now.
func CanTrigger(v *Vault, nowBlockHeight uint64) bool {
	return Classify(v, nowBlockHeight) == StateReadyForInheritance
}

// CanUpdateProofOfLife reports whether a proof-of-life refresh is legal.
// Once the vault reaches its grace period the refresh must fail rather
// than retroactively hide the missed deadline from beneficiaries.
func CanUpdateProofOfLife(v *Vault, nowBlockHeight uint64) bool {
	switch Classify(v, nowBlockHeight) {
	case StateActive, StateNearDeadline:
		return true
	default:
		return false
	}
}

// Action names a legal next operation for a vault snapshot.
type Action string

const (
	ActionDeposit          Action = "deposit"
	ActionWithdraw         Action = "withdraw"
	ActionProofOfLife      Action = "proof-of-life"
	ActionTrigger          Action = "trigger-inheritance"
	ActionClaim            Action = "claim-inheritance"
)

// LegalActions lists the operations the engine will accept for the vault
// in its current state.
func LegalActions(v *Vault, nowBlockHeight uint64) []Action {
	switch Classify(v, nowBlockHeight) {
	case StateActive, StateNearDeadline:
		return []Action{ActionDeposit, ActionWithdraw, ActionProofOfLife}
	case StateGracePeriod:
		return []Action{ActionDeposit}
	case StateReadyForInheritance:
		return []Action{ActionTrigger}
	case StateInheritanceTriggered:
		return []Action{ActionClaim}
	default:
		return nil
	}
}
