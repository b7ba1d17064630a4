/*
Package curve evaluates easing curves: CSS-style cubic beziers solved with
Newton-Raphson and mass-spring-damper springs integrated with fixed-step RK4.

Every evaluator is a pure function of normalized time t in [0,1]. Results are
deterministic: the same inputs produce the same bits on every platform, and
the endpoints are exact (0 at t<=0, 1 at t>=1).

	c, _ := curve.Resolve(domain.NamedEasing("gentle"))
	for _, p := range curve.Sample(c, 60) {
		fmt.Println(p.T, p.Value)
	}
*/
package curve
