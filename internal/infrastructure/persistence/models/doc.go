// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models own table names, column types and associations
// 3. ToDomain / FromDomain mappers convert between the two
// 4. Repositories only touch persistence models
//
// Structure:
// - base.go: BaseModel and AggregateModel
// - identity.go: users, workspaces, projects and tasks (read by the access policy)
// - requirement.go: requirements and their history, comments, attachments and link rows
// - stakeholder.go: stakeholders, meetings and meeting join rows
package models
