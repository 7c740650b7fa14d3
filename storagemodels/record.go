/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// Record is a schemaless item for models whose shape is only known at runtime,
// such as entries declared in a config file.
type Record map[string]any
