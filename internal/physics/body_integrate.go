package physics

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
)

// updateInertias splits the mass over the shapes by box volume and rebuilds
// the inverse mass and inertia. The per-shape offset term adds mass times
// the shape origin as a vector; it is not a parallel-axis correction.
func (b *Body) updateInertias() {
	switch b.mode {
	case BodyModeRigid:
		total := 0.0
		for i := range b.shapes {
			total += b.shapes[i].volume
		}

		var inertia mgl64.Vec3
		n := float64(len(b.shapes))
		for i := range b.shapes {
			s := &b.shapes[i]
			share := 1 / n
			if total > 0 {
				share = s.volume / total
			}
			m := share * b.mass
			inertia = inertia.Add(s.shape.MomentOfInertia(m)).Add(s.xform.Origin.Mul(m))
		}

		b.invInertia = geom.Reciprocal(inertia)
		b.invMass = 0
		if b.mass > 0 {
			b.invMass = 1 / b.mass
		}
	case BodyModeCharacter:
		b.invInertia = mgl64.Vec3{}
		b.invMass = 0
		if b.mass > 0 {
			b.invMass = 1 / b.mass
		}
	default:
		b.invInertia = mgl64.Vec3{}
		b.invMass = 0
	}
	b.updateTransformDependent()
}

func (b *Body) computeAreaGravity(a *Area) {
	if a.gravityIsPoint {
		v := a.transform.Xform(a.gravityVector).Sub(b.transform.Origin)
		if a.gravityDistanceScale > 0 {
			d := v.Len()*a.gravityDistanceScale + 1
			b.gravity = b.gravity.Add(geom.SafeNormalize(v).Mul(a.gravity / (d * d)))
		} else {
			b.gravity = b.gravity.Add(geom.SafeNormalize(v).Mul(a.gravity))
		}
	} else {
		b.gravity = b.gravity.Add(a.gravityVector.Mul(a.gravity))
	}
	b.areaLinearDamp += a.linearDamp
	b.areaAngularDamp += a.angularDamp
}

func (b *Body) integrateForces(step float64) {
	if b.mode == BodyModeStatic {
		return
	}

	b.gravity = mgl64.Vec3{}
	b.areaLinearDamp = 0
	b.areaAngularDamp = 0

	stopped := false
	if len(b.areas) > 0 {
		sort.SliceStable(b.areas, func(i, j int) bool {
			return b.areas[i].area.priority < b.areas[j].area.priority
		})
		for i := len(b.areas) - 1; i >= 0 && !stopped; i-- {
			a := b.areas[i].area
			switch mode := a.overrideMode; mode {
			case AreaOverrideCombine, AreaOverrideCombineReplace:
				b.computeAreaGravity(a)
				stopped = mode == AreaOverrideCombineReplace
			case AreaOverrideReplace, AreaOverrideReplaceCombine:
				b.gravity = mgl64.Vec3{}
				b.areaLinearDamp = 0
				b.areaAngularDamp = 0
				b.computeAreaGravity(a)
				stopped = mode == AreaOverrideReplace
			}
		}
	}
	if !stopped {
		b.computeAreaGravity(b.space.defaultArea)
	}

	b.gravity = b.gravity.Mul(b.gravityScale)
	if b.angularDamp >= 0 {
		b.areaAngularDamp = b.angularDamp
	}
	if b.linearDamp >= 0 {
		b.areaLinearDamp = b.linearDamp
	}

	var motion mgl64.Vec3
	doMotion := false
	if b.mode == BodyModeKinematic {
		cur := b.transform
		b.linearVelocity = b.newTransform.Origin.Sub(cur.Origin).Mul(1 / step)
		rel := geom.Orthonormalize(b.newTransform.Basis).Mul3(geom.Orthonormalize(cur.Basis).Transpose())
		axis, angle := geom.AxisAngle(rel)
		b.angularVelocity = axis.Mul(angle / step)
		motion = b.newTransform.Origin.Sub(cur.Origin)
		doMotion = true
	} else {
		if !b.omitForceIntegration && !b.firstIntegration {
			force := b.gravity.Mul(b.mass).Add(b.appliedForce)
			torque := b.appliedTorque

			damp := math.Max(0, 1-step*b.areaLinearDamp)
			angDamp := math.Max(0, 1-step*b.areaAngularDamp)

			b.linearVelocity = b.linearVelocity.Mul(damp).Add(force.Mul(b.invMass * step))
			b.angularVelocity = b.angularVelocity.Mul(angDamp).Add(b.invInertiaTensor.Mul3x1(torque).Mul(step))
		}
		if b.continuousCD {
			motion = b.linearVelocity.Mul(step)
			doMotion = true
		}
	}

	b.appliedForce = mgl64.Vec3{}
	b.appliedTorque = mgl64.Vec3{}
	b.firstIntegration = false
	b.biasedLinearVelocity = mgl64.Vec3{}
	b.biasedAngularVelocity = mgl64.Vec3{}

	if doMotion {
		b.updateShapesWithMotion(&motion)
	}
	b.contactCount = 0
}

func (b *Body) integrateVelocities(step float64) {
	if b.mode == BodyModeStatic {
		return
	}
	if b.fiCallback != nil {
		b.space.stateQueryList.add(b)
	}

	if b.mode == BodyModeKinematic {
		b.setTransform(b.newTransform, false)
		b.setInvTransform(b.newTransform.AffineInverse())
		if len(b.contacts) == 0 && b.linearVelocity == (mgl64.Vec3{}) && b.angularVelocity == (mgl64.Vec3{}) {
			b.setActive(false)
		}
		return
	}

	if b.axisLock != AxisLockDisabled {
		axis := int(b.axisLock) - 1
		for i := 0; i < 3; i++ {
			if i == axis {
				b.linearVelocity[i] = 0
				b.biasedLinearVelocity[i] = 0
			} else {
				b.angularVelocity[i] = 0
				b.biasedAngularVelocity[i] = 0
			}
		}
	}

	t := b.transform
	totalAng := b.angularVelocity.Add(b.biasedAngularVelocity)
	if w := totalAng.Len(); w != 0 {
		rot := geom.Rotation(totalAng.Mul(1/w), w*step)
		t.Basis = geom.Orthonormalize(rot.Mul3(t.Basis))
	}
	t.Origin = t.Origin.Add(b.linearVelocity.Add(b.biasedLinearVelocity).Mul(step))

	if b.continuousCD {
		// pairs are refreshed after this, so sweep the boxes ahead for the next step
		b.setTransform(t, false)
		motion := b.linearVelocity.Mul(step)
		b.updateShapesWithMotion(&motion)
	} else {
		b.setTransform(t, true)
	}
	b.setInvTransform(t.Inverse())
	b.updateTransformDependent()
}

// sleepTest accumulates still time and reports whether b may sleep.
func (b *Body) sleepTest(step float64) bool {
	switch {
	case b.mode == BodyModeStatic || b.mode == BodyModeKinematic, b.space == nil:
		return true
	case b.mode == BodyModeCharacter:
		return !b.active
	case !b.canSleep:
		return false
	}

	lin := b.space.linearSleepThreshold
	if b.angularVelocity.Len() <= b.space.angularSleepThreshold && b.linearVelocity.LenSqr() <= lin*lin {
		b.stillTime += step
		return b.stillTime > b.space.timeToSleep
	}
	b.stillTime = 0
	return false
}

func (b *Body) callQueries() {
	if b.fiCallback == nil {
		return
	}
	if e, ok := b.fiCallback.(Expirer); ok && e.Expired() {
		b.SetForceIntegrationCallback(nil, nil)
		return
	}
	b.fiCallback.IntegrateForces(&b.state, b.fiUserdata)
}
