// Package core provides the business logic for candidate profiles.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
//   - Service: the entry point for every operation (create, upload, list,
//     statistics, export).
//   - Store: the persistence interface, implemented by the database package.
//   - Extraction: workbook uploads are handed to the extract package, which
//     recovers tier, years of experience and availability from the first
//     sheet. The service merges that record with the submitted name and
//     surname before storing it.
//   - UploadLimiter: bounds how many workbooks are decoded at once.
//
// # Upload Flow
//
//  1. Client calls [Service.CreateFromWorkbook] with name, surname and file
//  2. The file extension and size are checked against the upload config
//  3. An upload slot is acquired; the engine decodes and extracts the record
//  4. The merged candidate is validated, normalized and inserted
//
// [Service.PreviewWorkbook] runs steps 2 and 3 only.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, format, extension)
//   - VAL001-VAL003: Validation errors (workbook structure, fields, input)
//   - CAN001: Candidate not found
//   - UPL002-UPL005: Upload errors (busy, cancelled, timeout)
//   - DB004-DB007: Database errors
package core
