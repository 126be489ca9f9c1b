// Package model evaluates the fitted estimators exported by the training
// notebook.
//
// Two narrow capabilities are exposed: Classifier maps one imputed feature
// row to a multi-output prediction vector, and Imputer fills missing values
// in a raw feature row. Both are decoded from msgpack artifacts whose field
// layout mirrors the fitted attributes of the scikit-learn estimators they
// were exported from (RandomForestClassifier, LogisticRegression and
// SimpleImputer).
//
// Decoded models are immutable and safe for concurrent use.
package model
