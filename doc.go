// Package octree implements a pair of dynamic, loose octrees for indexing
// three-dimensional entities by spatial location: AABBTree indexes
// axis-aligned bounding boxes, PointTree indexes points. Both support
// incremental insertion, removal, and relocation at runtime, and answer
// intersection, raycast, frustum, and (for points) radius queries faster
// than a linear scan.
//
// Looseness lets a node's admission region extend slightly beyond its
// strict cube, so an entry straddling a boundary is kept at the smallest
// ancestor whose loose cube can hold it rather than promoted to the root.
// Nodes split once they exceed MaxNodeEntries and merge back down once
// they no longer need the extra level; the root grows outward (doubling)
// to cover entries that no longer fit, and shrinks back in once the upper
// levels are empty or degenerate to a single occupied octant.
//
// The tree is not safe for concurrent use; callers needing concurrency
// must serialize access externally.
package octree
