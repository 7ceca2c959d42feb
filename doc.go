// Package revu provides a status-transition engine coordinating human review
// of machine-generated content tasks.
//
// Transition rules live in an explicit edge table (policy), free-form request
// metadata is normalized into structured columns (normalizer), and every
// committed change appends exactly one immutable history entry
// (coordinator + task store). Two request generations - the generic
// setStatus shape and the approve/reject shorthand - converge on one engine
// through the ingress adapter.
//
// End-users typically interact via the high-level Service façade exposed by
// the root package:
//
//	srv, _ := revu.New()
//	out, _ := srv.Adapter().Dispatch(ctx, "approve", map[string]interface{}{
//		"taskId":   "t1",
//		"feedback": "Looks good",
//	})
//
// For more details see the README and individual sub-packages.
package revu
