// Package model contains the typed payloads returned by the IdleMMO API.
//
// Field names follow the API's snake_case JSON keys. Timestamps decode into
// Timestamp, which accepts RFC3339 with or without an offset. Enumerations
// are string types with named constants; unknown values decode unchanged so
// new server-side values never break decoding.
//
// A few payloads need custom decoding:
//
//   - Authentication flattens the nested "api_key" object into top-level fields.
//   - ItemDetail.WhereToFind tolerates the server sending an empty array
//     instead of an object.
//   - Zone.Colour accepts "#rrggbb", "0xrrggbb" and bare "rrggbb".
package model
