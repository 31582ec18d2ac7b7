// Package httpapi exposes a likes service over HTTP:
//
//	GET   /api/likes          {"likes": n}
//	GET   /api/likes/{slug}   {"likes": n, "currentUserLikes": m}
//	PATCH /api/likes/{slug}   body {"value": d}  ->  {"likes": n}
//
// Errors are returned as {"error": code, "message": text}.
package httpapi
