// Package risk trains and evaluates the machine failure model. A logistic
// regression is fitted with full-batch gradient descent over features the
// caller has already scaled to a comparable range; the resulting
// TrainedModel is a plain value owned by whoever trained it and passed
// explicitly into every prediction.
package risk
