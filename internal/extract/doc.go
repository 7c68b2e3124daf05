// Package extract recovers the parameters that were substituted into a
// rendered template, even after the rendered text has been hand-edited.
//
// # Overview
//
// Extraction runs in three stages:
//
//   - Analyze parses a template into an ordered sequence of Blocks: scalar
//     Params and iterating Loops.
//   - Compile turns each Block into a Matcher, a pattern that can pull the
//     substituted value(s) back out of rendered text.
//   - Extract applies every Matcher to a source text and assembles the
//     recovered values into a ParameterMap.
//
// # Usage
//
// Recover parameters from an edited file region:
//
//	params, err := extract.Extract(tmpl, region, extract.Options{})
//	if err != nil {
//	    return err
//	}
//	out, err := renderer.RenderString(name, tmpl, params)
//
// # Limits
//
// Matchers are applied independently against the whole source with no
// shared parse state. Values that cannot be recovered from a single line,
// loops that are neither field-structured nor bracket-delimited, and
// template actions beyond plain field access are skipped: the value is
// omitted from the ParameterMap rather than reported as an error.
// Overlapping matches between Blocks are possible and are accepted
// imprecision, not a parse guarantee.
package extract
