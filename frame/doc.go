// Package frame holds the tabular model behind every dashboard loader: a
// row-oriented Table of nullable Values plus the handful of relational
// operations the loaders need (melt, merge, group fill, recode, coalesce,
// drop-missing, group-sum and rate derivation).
//
// Operations never mutate their inputs. A typical loader chains them:
//
//	deaths, _ := frame.Melt(cancer, []string{"Country", "Year", "Cancer", "Sex"}, "Age", "Deaths")
//	pop, _ := frame.Melt(population, []string{"Country", "Year", "Sex"}, "Age", "Pop")
//	merged, _ := frame.Merge(deaths, pop, frame.JoinLeft)
//	filled, _ := frame.FillWithin(merged, frame.FillSpec{Column: "Pop", GroupBy: []string{"Country", "Sex", "Age"}, Direction: frame.FillBackward})
package frame
