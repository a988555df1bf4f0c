// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queuesync

import (
	"context"
	"fmt"
)

// Mode is how a RefreshPolicy brings the view up to date.
type Mode int

const (
	// ModeReload discards the whole view and re-fetches every fragment.
	ModeReload Mode = iota

	// ModeFragment re-fetches and replaces a single fragment.
	ModeFragment
)

func (mode Mode) String() string {
	switch mode {
	case ModeReload:
		return "reload"
	case ModeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Mode(%d)", int(mode))
	}
}

// Strategy names accepted by PolicyFor.
const (
	StrategyRefetch = "refetch"
	StrategyReload  = "reload"
)

// RefreshPolicy decides what a sync signal does to the view. It holds
// no state.
type RefreshPolicy struct {
	Mode     Mode
	Fragment Fragment
}

// ReloadPolicy always reloads.
var ReloadPolicy = RefreshPolicy{Mode: ModeReload}

// FragmentPolicy re-fetches only fragment.
func FragmentPolicy(fragment Fragment) RefreshPolicy {
	return RefreshPolicy{Mode: ModeFragment, Fragment: fragment}
}

// PolicyFor maps a configured new-ticket strategy onto a policy.
// "refetch" refreshes fragment; "reload" reloads the view.
func PolicyFor(strategy string, fragment Fragment) (RefreshPolicy, error) {
	switch strategy {
	case StrategyReload:
		return ReloadPolicy, nil
	case StrategyRefetch, "":
		if _, err := ParseFragment(string(fragment)); err != nil {
			return RefreshPolicy{}, err
		}
		return FragmentPolicy(fragment), nil
	default:
		return RefreshPolicy{}, fmt.Errorf("queuesync: unknown strategy %q (want refetch or reload)", strategy)
	}
}

func (policy RefreshPolicy) String() string {
	if policy.Mode == ModeFragment {
		return "fragment:" + string(policy.Fragment)
	}
	return policy.Mode.String()
}

// refresher is the part of Client a policy drives.
type refresher interface {
	reload(ctx context.Context) (TaskResult, error)
	refresh(ctx context.Context, fragments ...Fragment) (TaskResult, error)
}

// apply carries out the policy against target.
func (policy RefreshPolicy) apply(ctx context.Context, target refresher) (TaskResult, error) {
	switch policy.Mode {
	case ModeReload:
		return target.reload(ctx)
	case ModeFragment:
		return target.refresh(ctx, policy.Fragment)
	default:
		return TaskResult{}, fmt.Errorf("queuesync: unknown refresh mode %s", policy.Mode)
	}
}
