// Package services implements the driving ports on top of the driven ones.
package services
