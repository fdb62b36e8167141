// Package config loads and validates nextgo.json, the project
// configuration file.
//
// A minimal nextgo.json:
//
//	{
//	  "name": "my-site",
//	  "paths": { "pages": "pages" },
//	  "dev": { "port": 3000 }
//	}
//
// All fields have defaults; an empty file is a valid project.
package config
