package main

const usage string = `Orion Logger

Usage:
    orion-logger [-v -debug] add <value> -now from <device>
    orion-logger [-v -debug] add <value> -timestamp=<timestamp> from <device>
    orion-logger [-v -debug] server (start | stop)
    orion-logger -h | -help
    orion-logger -version

Options:
    -now                      Use current time as timestamp
    -timestamp <timestamp>    Use an IETF RFC3339 timestamp
    -v, -verbose              Verbose output
    -debug                    Very verbose output
    -h, -help                 Show help
    -version                  Show version

Commands:
    add                       Log a new set of data
    server                    Manage the orion-logger server

Notes:
    Combining -debug and -verbose enables trace level messages.
    A value starting with a minus sign, like "-5[A]" or "-inf[V]", is never
    taken as a flag.

Environment:
    ORION_CONFIG              Optional yaml configuration file
    ORION_DATA_PATH           Root directory of the data files (default /tmp/data)
    ORION_LISTEN_PORT         Port of the logger server (default 8484)
    ORION_SERVER_URL          URL used by "server stop" (default http://localhost:8484)
    ORION_STRICT_SLUG         Require a literal '.' between node and driver
    SENML_ENDPOINT_URL        Forward measurement points as SenML
    CONTEXT_BROKER_URL        Forward measurement points to an NGSI-LD context broker
    MQTT_BROKER_URL           Publish measurement points to an MQTT broker
`

const copyright string = `
Copyright © 2015 Samuel Dolt <samuel@dolt.ch>
License GPLv3+: GNU GPL version 3 or later <http://gnu.org/licenses/gpl.html>

This is free software: you are free to change or redistribute it.
There is NO WARRANTY, to the extent permitted by law.
`

const invalidTimestamp string = `
Invalid timestamp - Timestamp must be a valid IETF RFC3339 string.

Example:

  - 1985-04-12T23:20:50.52Z

    Represents 20 minutes and 50.52 seconds after the 23rd hour of
    April 12th, 1985 in UTC

More info at https://www.ietf.org/rfc/rfc3339.txt
`

const invalidValue string = `
Invalid value - Value should represent one or more measurements

Example:

  - 9[V]
  - 9[V] 3[A] 5[K]

Valid unit:
  - [V]  for Volt
  - [A]  for Ampere
  - [Ω]  for Ohm
  - [W]  for Watt
  - [K]  for Kelvin
  - [s]  for Second
  - [kg] for Kilogram
`

const invalidDevice string = `
Invalid device - Device should be port@node.driver

Example:

  - temp1@core-isa-000.lm-sensors
  - temp_0@arduino100.arduino_usb
`
