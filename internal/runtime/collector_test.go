package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/geom"
)

func TestCollectorPointsAppendAndUndo(t *testing.T) {
	sess := domain.NewSession()
	c := NewCollector(sess, TargetCircumference)

	c.AddPoint(geom.Pt(1, 1))
	c.AddPoint(geom.Pt(2, 2))
	require.Len(t, sess.CircPoints, 2)
	assert.True(t, sess.Dirty, "append marks dirty")

	c.UndoLast()
	require.Len(t, sess.CircPoints, 1)
	assert.Equal(t, geom.Pt(1, 1), sess.CircPoints[0])

	c.UndoLast()
	c.UndoLast() // no-op on empty
	assert.Empty(t, sess.CircPoints)
}

func TestCollectorFirstPolygonCreatedOnDemand(t *testing.T) {
	sess := domain.NewSession()
	c := NewCollector(sess, TargetIgnoreRegions)

	c.AddPoint(geom.Pt(5, 5))
	require.Len(t, sess.IgnoreRegions, 1)
	require.Len(t, sess.IgnoreRegions[0], 1)
}

func TestCollectorUndoCrossesPolygonBoundary(t *testing.T) {
	sess := domain.NewSession()
	c := NewCollector(sess, TargetIgnoreRegions)

	c.AddPoint(geom.Pt(0, 0))
	c.AddPoint(geom.Pt(10, 0))
	c.AddPoint(geom.Pt(10, 10))
	c.StartNewPolygon()
	c.AddPoint(geom.Pt(50, 50))
	require.Len(t, sess.IgnoreRegions, 2)

	// Removing the only point of the active polygon removes the polygon too.
	c.UndoLast()
	require.Len(t, sess.IgnoreRegions, 1)
	require.Len(t, sess.IgnoreRegions[0], 3)

	// The next undo edits the previous polygon, not a stale empty one.
	c.UndoLast()
	require.Len(t, sess.IgnoreRegions, 1)
	assert.Len(t, sess.IgnoreRegions[0], 2)
}

func TestCollectorUndoOnEmptyActivePolygon(t *testing.T) {
	sess := domain.NewSession()
	c := NewCollector(sess, TargetIgnoreRegions)

	c.AddPoint(geom.Pt(0, 0))
	c.AddPoint(geom.Pt(1, 0))
	c.StartNewPolygon()
	require.Len(t, sess.IgnoreRegions, 2)
	require.Empty(t, sess.IgnoreRegions[1])

	// Undo on an empty active polygon drops that polygon, keeping the
	// previous one intact.
	c.UndoLast()
	require.Len(t, sess.IgnoreRegions, 1)
	assert.Len(t, sess.IgnoreRegions[0], 2)
}

func TestCollectorUndoSingleEmptyPolygonLeavesEmptyList(t *testing.T) {
	sess := domain.NewSession()
	sess.IgnoreRegions = []geom.Polygon{{}}
	c := NewCollector(sess, TargetIgnoreRegions)

	c.UndoLast()
	assert.Empty(t, sess.IgnoreRegions)

	c.UndoLast() // no-op on empty list
	assert.Empty(t, sess.IgnoreRegions)
}

func TestStartNewPolygonRefusesEmptyRuns(t *testing.T) {
	sess := domain.NewSession()
	c := NewCollector(sess, TargetIgnoreRegions)

	c.AddPoint(geom.Pt(1, 1))
	c.StartNewPolygon()
	c.StartNewPolygon()
	c.StartNewPolygon()
	assert.Len(t, sess.IgnoreRegions, 2, "only one trailing empty polygon")
}

func TestDropTrailingEmptyPolygon(t *testing.T) {
	sess := domain.NewSession()
	c := NewCollector(sess, TargetIgnoreRegions)

	c.AddPoint(geom.Pt(1, 1))
	c.StartNewPolygon()
	c.DropTrailingEmptyPolygon()
	require.Len(t, sess.IgnoreRegions, 1)

	// Non-empty active polygon is left alone.
	c.DropTrailingEmptyPolygon()
	require.Len(t, sess.IgnoreRegions, 1)
	assert.Len(t, sess.IgnoreRegions[0], 1)
}
