package physics

import (
	"fmt"
	"math"
)

type BodyMode int

const (
	BodyModeStatic BodyMode = iota
	BodyModeKinematic
	BodyModeRigid
	BodyModeCharacter
)

type BodyParameter int

const (
	BodyParamBounce BodyParameter = iota
	BodyParamFriction
	BodyParamMass
	BodyParamGravityScale
	BodyParamLinearDamp
	BodyParamAngularDamp
	BodyParamMax
)

type BodyState int

const (
	BodyStateTransform BodyState = iota
	BodyStateLinearVelocity
	BodyStateAngularVelocity
	BodyStateSleeping
	BodyStateCanSleep
)

type AxisLock int

const (
	AxisLockDisabled AxisLock = iota
	AxisLockX
	AxisLockY
	AxisLockZ
)

type AreaParameter int

const (
	AreaParamGravity AreaParameter = iota
	AreaParamGravityVector
	AreaParamGravityIsPoint
	AreaParamGravityDistanceScale
	AreaParamGravityPointAttenuation
	AreaParamLinearDamp
	AreaParamAngularDamp
	AreaParamPriority
)

type AreaSpaceOverrideMode int

const (
	AreaOverrideDisabled AreaSpaceOverrideMode = iota
	AreaOverrideCombine
	AreaOverrideCombineReplace
	AreaOverrideReplace
	AreaOverrideReplaceCombine
)

type AreaBodyStatus int

const (
	AreaBodyAdded AreaBodyStatus = iota
	AreaBodyRemoved
)

type SpaceParameter int

const (
	SpaceParamContactRecycleRadius SpaceParameter = iota
	SpaceParamContactMaxSeparation
	SpaceParamContactMaxAllowedPenetration
	SpaceParamBodyLinearVelocitySleepThreshold
	SpaceParamBodyAngularVelocitySleepThreshold
	SpaceParamBodyTimeToSleep
	SpaceParamBodyAngularVelocityDampRatio
	SpaceParamConstraintDefaultBias
)

// ElapsedTime indexes the per-phase step timings of a Space.
type ElapsedTime int

const (
	ElapsedIntegrateForces ElapsedTime = iota
	ElapsedGenerateIslands
	ElapsedSetupConstraints
	ElapsedSolveConstraints
	ElapsedIntegrateVelocities
	ElapsedMax
)

const (
	defaultSleepThresholdLinear  = 0.1
	defaultSleepThresholdAngular = 8.0 * math.Pi / 180
	defaultTimeToSleep           = 0.5
)

var bodyModeNames = []string{"static", "kinematic", "rigid", "character"}

var overrideNames = []string{"disabled", "combine", "combine_replace", "replace", "replace_combine"}

var spaceParamNames = []string{
	"contact_recycle_radius",
	"contact_max_separation",
	"contact_max_allowed_penetration",
	"body_linear_velocity_sleep_threshold",
	"body_angular_velocity_sleep_threshold",
	"body_time_to_sleep",
	"body_angular_velocity_damp_ratio",
	"constraint_default_bias",
}

var axisLockNames = []string{"disabled", "x", "y", "z"}

var elapsedNames = []string{"integrate_forces", "generate_islands", "setup_constraints", "solve_constraints", "integrate_velocities"}

func (m BodyMode) String() string { return enumName(bodyModeNames, int(m), "BodyMode") }

func (m AreaSpaceOverrideMode) String() string {
	return enumName(overrideNames, int(m), "AreaSpaceOverrideMode")
}

func (p SpaceParameter) String() string {
	return enumName(spaceParamNames, int(p), "SpaceParameter")
}

func (l AxisLock) String() string { return enumName(axisLockNames, int(l), "AxisLock") }

func (e ElapsedTime) String() string { return enumName(elapsedNames, int(e), "ElapsedTime") }

func ParseBodyMode(s string) (BodyMode, error) {
	i, err := parseEnum(bodyModeNames, s)
	return BodyMode(i), err
}

func ParseAreaSpaceOverrideMode(s string) (AreaSpaceOverrideMode, error) {
	i, err := parseEnum(overrideNames, s)
	return AreaSpaceOverrideMode(i), err
}

func ParseSpaceParameter(s string) (SpaceParameter, error) {
	i, err := parseEnum(spaceParamNames, s)
	return SpaceParameter(i), err
}

func ParseAxisLock(s string) (AxisLock, error) {
	i, err := parseEnum(axisLockNames, s)
	return AxisLock(i), err
}

func enumName(names []string, i int, kind string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, i)
	}
	return names[i]
}

func parseEnum(names []string, s string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown name %q", ErrInvalidParameter, s)
}
