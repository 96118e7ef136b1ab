// Package stablematch assigns two numeric sets to each other one-to-one with
// the Gale-Shapley deferred-acceptance protocol.
//
// Both sides rank the other by absolute difference (closest first, ties kept
// in input order). A pair further apart than the tolerance is ineligible: it
// is carried in the rankings with Eligible=false and is never proposed. The
// result is the proposer-optimal stable matching over eligible pairs.
//
// The classic formulation expects the smaller set to propose. Options can
// enforce that (RequireProposerMinority), swap the sides automatically
// (SmallerProposes), or run as given; deferred acceptance terminates and
// yields a stable matching either way.
package stablematch
