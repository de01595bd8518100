// Package vrm defines the data model for driving a VRM-style humanoid:
// the closed humanoid bone taxonomy, quaternion and vector math, facial
// expression channels with alias resolution, and the writer interfaces the
// motion pipeline applies its output through.
package vrm

// Bone identifies one bone of the VRM humanoid skeleton.
// The set is closed: motion sources address bones by name, and names are
// resolved once into these indices rather than re-scanned per frame.
type Bone int

const (
	BoneHips Bone = iota
	BoneSpine
	BoneChest
	BoneUpperChest
	BoneNeck
	BoneHead
	BoneLeftEye
	BoneRightEye

	BoneLeftShoulder
	BoneLeftUpperArm
	BoneLeftLowerArm
	BoneLeftHand
	BoneRightShoulder
	BoneRightUpperArm
	BoneRightLowerArm
	BoneRightHand

	BoneLeftUpperLeg
	BoneLeftLowerLeg
	BoneLeftFoot
	BoneLeftToes
	BoneRightUpperLeg
	BoneRightLowerLeg
	BoneRightFoot
	BoneRightToes

	BoneLeftThumbProximal
	BoneLeftThumbIntermediate
	BoneLeftThumbDistal
	BoneLeftIndexProximal
	BoneLeftIndexIntermediate
	BoneLeftIndexDistal
	BoneLeftMiddleProximal
	BoneLeftMiddleIntermediate
	BoneLeftMiddleDistal
	BoneLeftRingProximal
	BoneLeftRingIntermediate
	BoneLeftRingDistal
	BoneLeftLittleProximal
	BoneLeftLittleIntermediate
	BoneLeftLittleDistal

	BoneRightThumbProximal
	BoneRightThumbIntermediate
	BoneRightThumbDistal
	BoneRightIndexProximal
	BoneRightIndexIntermediate
	BoneRightIndexDistal
	BoneRightMiddleProximal
	BoneRightMiddleIntermediate
	BoneRightMiddleDistal
	BoneRightRingProximal
	BoneRightRingIntermediate
	BoneRightRingDistal
	BoneRightLittleProximal
	BoneRightLittleIntermediate
	BoneRightLittleDistal

	// NumBones is the size of the taxonomy. Keep last.
	NumBones
)

// RootBone is the bone that carries the skeleton's world position.
const RootBone = BoneHips

// boneNames are the canonical VRM bone names (camelCase, as used in VRM
// pose JSON and by vision solvers).
var boneNames = [NumBones]string{
	BoneHips:       "hips",
	BoneSpine:      "spine",
	BoneChest:      "chest",
	BoneUpperChest: "upperChest",
	BoneNeck:       "neck",
	BoneHead:       "head",
	BoneLeftEye:    "leftEye",
	BoneRightEye:   "rightEye",

	BoneLeftShoulder:  "leftShoulder",
	BoneLeftUpperArm:  "leftUpperArm",
	BoneLeftLowerArm:  "leftLowerArm",
	BoneLeftHand:      "leftHand",
	BoneRightShoulder: "rightShoulder",
	BoneRightUpperArm: "rightUpperArm",
	BoneRightLowerArm: "rightLowerArm",
	BoneRightHand:     "rightHand",

	BoneLeftUpperLeg:  "leftUpperLeg",
	BoneLeftLowerLeg:  "leftLowerLeg",
	BoneLeftFoot:      "leftFoot",
	BoneLeftToes:      "leftToes",
	BoneRightUpperLeg: "rightUpperLeg",
	BoneRightLowerLeg: "rightLowerLeg",
	BoneRightFoot:     "rightFoot",
	BoneRightToes:     "rightToes",

	BoneLeftThumbProximal:       "leftThumbProximal",
	BoneLeftThumbIntermediate:   "leftThumbIntermediate",
	BoneLeftThumbDistal:         "leftThumbDistal",
	BoneLeftIndexProximal:       "leftIndexProximal",
	BoneLeftIndexIntermediate:   "leftIndexIntermediate",
	BoneLeftIndexDistal:         "leftIndexDistal",
	BoneLeftMiddleProximal:      "leftMiddleProximal",
	BoneLeftMiddleIntermediate:  "leftMiddleIntermediate",
	BoneLeftMiddleDistal:        "leftMiddleDistal",
	BoneLeftRingProximal:        "leftRingProximal",
	BoneLeftRingIntermediate:    "leftRingIntermediate",
	BoneLeftRingDistal:          "leftRingDistal",
	BoneLeftLittleProximal:      "leftLittleProximal",
	BoneLeftLittleIntermediate:  "leftLittleIntermediate",
	BoneLeftLittleDistal:        "leftLittleDistal",

	BoneRightThumbProximal:      "rightThumbProximal",
	BoneRightThumbIntermediate:  "rightThumbIntermediate",
	BoneRightThumbDistal:        "rightThumbDistal",
	BoneRightIndexProximal:      "rightIndexProximal",
	BoneRightIndexIntermediate:  "rightIndexIntermediate",
	BoneRightIndexDistal:        "rightIndexDistal",
	BoneRightMiddleProximal:     "rightMiddleProximal",
	BoneRightMiddleIntermediate: "rightMiddleIntermediate",
	BoneRightMiddleDistal:       "rightMiddleDistal",
	BoneRightRingProximal:       "rightRingProximal",
	BoneRightRingIntermediate:   "rightRingIntermediate",
	BoneRightRingDistal:         "rightRingDistal",
	BoneRightLittleProximal:     "rightLittleProximal",
	BoneRightLittleIntermediate: "rightLittleIntermediate",
	BoneRightLittleDistal:       "rightLittleDistal",
}

// boneByName maps both canonical camelCase names and the PascalCase variants
// used by the VMC protocol ("Hips", "LeftUpperArm") to bone indices.
var boneByName = func() map[string]Bone {
	m := make(map[string]Bone, int(NumBones)*2)
	for b := Bone(0); b < NumBones; b++ {
		name := boneNames[b]
		m[name] = b
		m[pascal(name)] = b
	}
	return m
}()

func pascal(name string) string {
	if name == "" {
		return name
	}
	c := name[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return string(c) + name[1:]
}

// String returns the canonical camelCase bone name.
func (b Bone) String() string {
	if b < 0 || b >= NumBones {
		return "invalid"
	}
	return boneNames[b]
}

// Valid reports whether b is within the taxonomy.
func (b Bone) Valid() bool {
	return b >= 0 && b < NumBones
}

// ParseBone resolves a bone name in either camelCase ("leftUpperArm") or
// PascalCase ("LeftUpperArm") form.
func ParseBone(name string) (Bone, bool) {
	b, ok := boneByName[name]
	return b, ok
}

// AllBones returns every bone in index order.
func AllBones() []Bone {
	bones := make([]Bone, NumBones)
	for i := range bones {
		bones[i] = Bone(i)
	}
	return bones
}

// IsUpperBody reports whether the bone belongs to the face-only allow set:
// head, neck, eyes, spine/chest/upperChest, shoulders, arms, hands and
// fingers. Hips and legs are excluded.
func (b Bone) IsUpperBody() bool {
	switch {
	case b == BoneHips:
		return false
	case b >= BoneLeftUpperLeg && b <= BoneRightToes:
		return false
	default:
		return b.Valid()
	}
}

// IsFinger reports whether the bone is a finger joint.
func (b Bone) IsFinger() bool {
	return b >= BoneLeftThumbProximal && b <= BoneRightLittleDistal
}

// IsHeadGroup reports whether the bone is part of the head group
// (head, neck, eyes), which gets heavier smoothing than limbs.
func (b Bone) IsHeadGroup() bool {
	return b == BoneHead || b == BoneNeck || b == BoneLeftEye || b == BoneRightEye
}
