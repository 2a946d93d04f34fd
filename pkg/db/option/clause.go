package option

import "gorm.io/gorm/clause"

var clauseForUpdate = clause.Locking{Strength: clause.LockingStrengthUpdate}
