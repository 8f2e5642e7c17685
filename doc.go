/*
Package m3table reads and writes offset tables, the flat archives that bundle
a fixed number of variable-length sub-files behind a leading array of
32-bit little-endian offsets.

Data Structure Documentation

Table

A table contains a header, an offset array and the payloads of all
present slots.

    Table layout:
    +----------------------+--------------+---------+-----------+---------+
    | entry count (4 byte) | offset array | payload |    ...    | payload |
    +----------------------+--------------+---------+-----------+---------+

    Offset array:
    +-------------------+-------+---------------------+-------------------------+
    | offset 0 (4 byte) |  ...  | offset n-1 (4 byte) | table size (4 byte)     |
    +-------------------+-------+---------------------+-------------------------+

All integers are little-endian. The entry count is capped at 65535.

Slot

A slot with a zero offset is absent and carries no bytes. A present slot
starts at its offset and ends at the next non-zero offset in the array,
which is at the latest the trailing table size (the sentinel).

Directory

Unpacked tables are directories holding one file per slot: "{i}.bin" with
the payload of a present slot or an empty "{i}.ignore" for an absent one.
*/
package m3table
