package attack

// Role represents the malicious behavior assigned to a node.
type Role string

const (
	RoleHonest    Role = "honest"
	RoleSybil     Role = "sybil"
	RoleSinkhole  Role = "sinkhole"
	RoleSelective Role = "selective_forwarding"
)

// Profile holds the disjoint sets of malicious node ids for one run.
type Profile struct {
	Sybil     map[int]struct{}
	Sinkhole  map[int]struct{}
	Selective map[int]struct{}
}

// Size returns the number of malicious nodes.
func (p Profile) Size() int {
	return len(p.Sybil) + len(p.Sinkhole) + len(p.Selective)
}

// RoleOf returns the role assigned to id.
func (p Profile) RoleOf(id int) Role {
	if _, ok := p.Sybil[id]; ok {
		return RoleSybil
	}
	if _, ok := p.Sinkhole[id]; ok {
		return RoleSinkhole
	}
	if _, ok := p.Selective[id]; ok {
		return RoleSelective
	}
	return RoleHonest
}

// Behavior constants.
const (
	InitialTrust         = 1.0
	SinkholeMultiplier   = 1.8
	SelectiveDropProb    = 0.45
	ForwardReward        = 0.02
	DropPenalty          = 0.08
	SybilPenalty         = 0.02
	minMaliciousPerGroup = 1
)
