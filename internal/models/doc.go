// Package models defines the core domain models for FoodLens.
//
// # Models
//
//   - Analysis: the structured nutrition/health judgment for one image,
//     exactly as returned to clients
//   - Nutrition and Amount: the nutrition block of an Analysis
//   - AnalysisRecord: the persisted subset of an Analysis, owned by one user
//   - User: a locally registered account
//
// # Design Principles
//
//  1. Analyses are immutable once produced; records are never updated
//  2. Use ID strings instead of pointers for relationships
//  3. JSON tags follow the wire formats: camelCase for analyses (the client
//     contract), snake_case for records (the table columns)
package models
