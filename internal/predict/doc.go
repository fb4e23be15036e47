// Package predict forward-simulates the future path of a body for the
// orbit overlay.
//
// The target body is integrated alone with classic RK4 through the field
// of the other bodies, frozen at their snapshot positions. A pass ends
// when the orbit closes, when the body escapes past DivergenceFactor
// times its starting distance from the primary, or after MaxSteps.
// Every outcome returns the points gathered so far.
//
//	pred := predict.New(predict.DefaultConfig(), logr.Discard())
//	res := pred.Predict(world, params, 1)
//	fmt.Println(len(res.Points), res.Reason)
package predict
