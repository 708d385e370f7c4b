package orarec

import (
	"errors"
	"fmt"
)

var EmptyConStrErr = errors.New("connection string can't be blank")
var CantCreateConnErr = func(error string) error {
	return errors.New(fmt.Sprintf("connection could not be created [%s]", error))
}
var CantPingConnection = func(error string) error { return errors.New(fmt.Sprintf("ping test failed [%s]", error)) }
var BadQualifiedNameErr = func(name string) error {
	return errors.New(fmt.Sprintf("record type name must be PKG.REC or OWNER.PKG.REC, got [%s]", name))
}
var TypeNotFoundErr = func(name string) error {
	return errors.New(fmt.Sprintf("record type [%s] not found in the data dictionary", name))
}
var UnboundTypeErr = func(param string) error {
	return errors.New(fmt.Sprintf("record parameter [%s] has neither a descriptor nor a type name", param))
}
var UnknownFieldErr = func(typeName, field string) error {
	return errors.New(fmt.Sprintf("record type [%s] has no field [%s]", typeName, field))
}
var BadRecordValueErr = func(param string, value any) error {
	return errors.New(fmt.Sprintf("record parameter [%s] must carry a *Record or map value, got [%T]", param, value))
}
