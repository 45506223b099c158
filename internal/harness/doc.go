// Package harness runs query scenarios against a scratch database.
//
// A scenario loads one model from descriptor search paths, seeds its table
// and runs a sequence of query steps. Each step configures a fresh source
// from a query document, compiles it, runs it and checks the outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: hats_by_price
//	description: "What this scenario validates"
//	models:
//	  - ../models
//	model: shop/product
//	language: en
//	languages: [en, fr]
//	dialect: sqlite
//	seed:
//	  - { title_en: Red hat, tags: [hat, red], price: 19.5 }
//	steps:
//	  - name: hats
//	    query:
//	      filters:
//	        - { property: tags, value: hat }
//	      orders:
//	        - { property: price, mode: desc }
//	    expect:
//	      ids: [item1]
//	      count: 1
//
// # Expectations
//
//   - ids: exact keys of the loaded page, in order
//   - contains: keys that must be on the page, in any order
//   - count: number of matching items, ignoring pagination
//   - sql, inline: exact compiled SELECT, parameterized or interpolated
//   - first: subset match on the first loaded item
//   - error: the step must fail (invalid_argument, domain or any)
//
// # Deterministic Testing
//
// Seeded items without a key get sequential keys (item1, item2, ... or
// key_prefix1, ...). Every SELECT is ordered by the model key after the
// requested orders, so traces are identical across runs and can be
// compared against golden files.
package harness
