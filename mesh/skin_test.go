package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddJointEffect(t *testing.T) {
	var s VertexSkinData
	s.AddJointEffect(0, 0.1)
	s.AddJointEffect(1, 0.5)
	s.AddJointEffect(2, 0.3)
	s.AddJointEffect(3, 0.3)
	s.AddJointEffect(4, 0.05)

	assert.Equal(t, []int{1, 2, 3, 0, 4}, s.JointIDs)
	assert.Equal(t, []float32{0.5, 0.3, 0.3, 0.1, 0.05}, s.Weights)
}

func TestLimit(t *testing.T) {
	const eps = 0.00001

	var s VertexSkinData
	for i, w := range []float32{0.1, 0.2, 0.3, 0.15, 0.25} {
		s.AddJointEffect(i, w)
	}
	s.Limit(MaxJointInfluences)

	assert.Equal(t, []int{2, 4, 1, 3}, s.JointIDs)
	var sum float32
	for _, w := range s.Weights {
		sum += w
	}
	assert.InDelta(t, 1, sum, eps)
	assert.InDelta(t, 0.3/0.9, s.Weights[0], eps)
}

func TestLimitPadsAndNormalizes(t *testing.T) {
	var s VertexSkinData
	s.AddJointEffect(7, 0.2)
	s.AddJointEffect(3, 0.6)
	s.Limit(4)

	assert.Equal(t, []int{3, 7, 0, 0}, s.JointIDs)
	assert.InDelta(t, 0.75, s.Weights[0], 0.00001)
	assert.InDelta(t, 0.25, s.Weights[1], 0.00001)
	assert.Equal(t, float32(0), s.Weights[2])

	joints, weights := s.Influences()
	assert.Equal(t, [4]int32{3, 7, 0, 0}, joints)
	assert.Equal(t, s.Weights[1], weights[1])
}

func TestLimitEmpty(t *testing.T) {
	var s VertexSkinData
	assert.True(t, s.Empty())
	s.Limit(2)
	assert.Equal(t, []int{0, 0}, s.JointIDs)
	assert.Equal(t, []float32{0, 0}, s.Weights)
}

func TestLimitZeroWeights(t *testing.T) {
	var s VertexSkinData
	s.AddJointEffect(1, 0)
	s.AddJointEffect(2, 0)
	s.Limit(4)

	assert.Equal(t, []int{1, 2, 0, 0}, s.JointIDs)
	assert.Equal(t, []float32{1, 0, 0, 0}, s.Weights)
}
