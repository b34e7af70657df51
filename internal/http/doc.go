// Package httpapp provides the HTTP server for blogup.
//
//	@title						Blogup API
//	@version					1.0
//	@description				A minimal blogging backend: accounts with bearer tokens and author-scoped posts.
//	@description
//	@description				## Authentication
//	@description
//	@description				1. `POST /user/signup` or `POST /user/signin` returns `{"jwt": "TOKEN"}`.
//	@description				2. Send `Authorization: Bearer TOKEN` on every `/post` request.
//	@description
//	@description				A missing header is answered with 401, a token that does not verify with 403.
//	@description				Bodies that fail validation are answered with 411.
//
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /user/signup or /user/signin
//
//	@tag.name					Users
//	@tag.description			Signup and signin.
//
//	@tag.name					Posts
//	@tag.description			Blog posts. Updates are limited to the post's author.
package httpapp
