// Package model holds the domain types shared by the cost model and the
// dispatch planner, along with the error values they return.
package model
