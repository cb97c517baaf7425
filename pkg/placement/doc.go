// Package placement positions images and labels on a projected map so that
// no two placed items collide.
//
// # Overview
//
// A run takes two ordered lists of [Request] values and produces a list of
// [Geometry] values in emission order:
//
//  1. Images are placed first, in input order, centered on their anchor and
//     scaled by Config.ImgScale. Images never move and may overlap each other.
//  2. Labels are sorted by tier, then size, then weight, then input order,
//     and placed one at a time at the nearest free position to their ideal
//     rectangle.
//
// Every accepted item reserves a padded rectangle in a spatial index before
// the next item is considered, so earlier items always win contested space.
//
// # Candidate search
//
// For each label the engine runs a breadth-first search seeded with the ideal
// rectangle. A candidate that collides with already reserved rectangles
// spawns four new candidates flush against each collider's edges (above,
// below, left and right). Candidates further from the ideal center than the
// best free candidate found so far are pruned. When the queue drains the
// closest free candidate wins; if none exists the run fails with
// PLACEMENT_EXHAUSTED.
//
// # Discarding
//
// Labels below the top tier are optional. Config.DiscardFromTier narrows
// this to the tiers at or beyond it, so setting it to the Wiki tier keeps
// every other category mandatory. An
// optional label that cannot be placed within DistanceDiscardThreshold of
// its ideal position is dropped without reserving space. Labels flagged
// IsTop are never dropped.
//
// # Usage
//
//	eng, err := placement.New(cfg, measure.NewBasicMeasurer(), measure.NewDirImages("imgs"))
//	if err != nil {
//	    return err // INVALID_CONFIGURATION
//	}
//	res, err := eng.Run(ctx, images, labels)
package placement
