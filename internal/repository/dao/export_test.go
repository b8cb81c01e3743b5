package dao

var DropAllTables = dropAllTables
