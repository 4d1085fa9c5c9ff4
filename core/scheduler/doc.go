// Package scheduler assigns production jobs to machines. Two greedy,
// single-pass strategies are provided: a baseline that follows priority and
// due date, and a risk-aware variant that scores every compatible machine on
// setup continuity, failure risk, risk windows, due-date slack, urgency and
// priority. KPIs computed by CalculateKPIs make the two comparable.
package scheduler
