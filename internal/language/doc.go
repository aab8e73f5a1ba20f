// Package language resolves BCP-47 tags into the canonical form and English
// display name used when prompting the translation and speech services.
package language
