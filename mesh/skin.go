package mesh

// MaxJointInfluences is the number of joint slots a skinned vertex carries.
const MaxJointInfluences = 4

// VertexSkinData holds the joint influences of one vertex, heaviest first.
type VertexSkinData struct {
	JointIDs []int
	Weights  []float32
}

// AddJointEffect inserts an influence keeping weights in descending order.
// Equal weights keep insertion order.
func (s *VertexSkinData) AddJointEffect(jointID int, weight float32) {
	for i, w := range s.Weights {
		if weight > w {
			s.JointIDs = append(s.JointIDs[:i], append([]int{jointID}, s.JointIDs[i:]...)...)
			s.Weights = append(s.Weights[:i], append([]float32{weight}, s.Weights[i:]...)...)
			return
		}
	}
	s.JointIDs = append(s.JointIDs, jointID)
	s.Weights = append(s.Weights, weight)
}

// Limit keeps the n heaviest influences and renormalizes them. The last
// kept slot takes 1 - sum(others) so the weights add up to exactly one.
// Influences that all weigh zero bind the vertex fully to the first joint.
// Missing slots are padded with joint 0 and weight 0.
func (s *VertexSkinData) Limit(n int) {
	if len(s.JointIDs) > n {
		s.JointIDs = s.JointIDs[:n]
		s.Weights = s.Weights[:n]
	}
	var total float32
	for _, w := range s.Weights {
		total += w
	}
	if len(s.Weights) > 0 && total <= 0 {
		s.Weights[0] = 1
		for i := 1; i < len(s.Weights); i++ {
			s.Weights[i] = 0
		}
		total = 1
	}
	if last := len(s.Weights) - 1; last >= 0 && total > 0 {
		var sum float32
		for i := 0; i < last; i++ {
			s.Weights[i] /= total
			sum += s.Weights[i]
		}
		s.Weights[last] = 1 - sum
	}
	for len(s.JointIDs) < n {
		s.JointIDs = append(s.JointIDs, 0)
		s.Weights = append(s.Weights, 0)
	}
}

// Influences returns the first MaxJointInfluences slots in fixed-size form.
func (s *VertexSkinData) Influences() (joints [MaxJointInfluences]int32, weights [MaxJointInfluences]float32) {
	for i := 0; i < len(s.JointIDs) && i < MaxJointInfluences; i++ {
		joints[i] = int32(s.JointIDs[i])
		weights[i] = s.Weights[i]
	}
	return
}

// Empty reports whether no joint affects the vertex.
func (s *VertexSkinData) Empty() bool {
	return len(s.JointIDs) == 0
}
